// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the AleutianRL CLI.
//
// Every printer respects the active personality level: machine mode
// emits stable, grep-friendly text; the richer levels add color and
// icons. Scripts should set ALEUTIANRL_PERSONALITY=machine or rely on
// the non-TTY fallback.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian palette, ocean teals plus the usual semantic colors.
var (
	ColorTealBright = lipgloss.Color("#2CD7C7")
	ColorSuccess    = lipgloss.Color("#2CD7C7")
	ColorWarning    = lipgloss.Color("#F4D03F")
	ColorError      = lipgloss.Color("#E74C3C")
	ColorMuted      = lipgloss.Color("#2C4A54")
)

// Styles holds the pre-built lipgloss styles the printers share.
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
}

// Icon is a themed status glyph.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
	IconAnchor  Icon = "⚓"
	IconShip    Icon = "⛵"
	IconWave    Icon = "〰"
)

// Render returns the icon colored by its meaning. Decorative icons
// pass through unstyled.
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// Title prints a styled heading. Silent in machine mode.
func Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// statusLine prints one status message. Machine mode emits
// "PREFIX: text" on w; the richer levels print an icon plus the text,
// styled or not.
func statusLine(w *os.File, machinePrefix string, icon Icon, style lipgloss.Style, text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(w, "%s: %s\n", machinePrefix, text)
	case PersonalityMinimal:
		fmt.Printf("%s %s\n", icon.Render(), text)
	default:
		fmt.Printf("%s %s\n", icon.Render(), style.Render(text))
	}
}

// Success prints a success line with a checkmark.
func Success(text string) { statusLine(os.Stdout, "OK", IconSuccess, Styles.Success, text) }

// Warning prints a warning line; machine mode sends it to stderr.
func Warning(text string) { statusLine(os.Stderr, "WARN", IconWarning, Styles.Warning, text) }

// Error prints an error line; machine mode sends it to stderr.
func Error(text string) { statusLine(os.Stderr, "ERROR", IconError, Styles.Error, text) }

// Info prints a secondary detail line.
func Info(text string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Println(text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
}

// FileStatus prints a written artifact with its status icon and an
// optional reason.
func FileStatus(path string, status Icon, reason string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Printf("%s\t%s\t%s\n", status, path, reason)
	case PersonalityMinimal:
		fmt.Printf("%s %s\n", status.Render(), path)
	default:
		if reason != "" {
			fmt.Printf("%s %s %s\n", status.Render(), path, Styles.Muted.Render("("+reason+")"))
		} else {
			fmt.Printf("%s %s\n", status.Render(), path)
		}
	}
}

// Summary prints the dataset split counts.
func Summary(train, val, total int) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Printf("SUMMARY: train=%d val=%d total=%d\n", train, val, total)
		return
	}
	fmt.Printf("\n%s %s  %s %s  %s %s\n",
		Styles.Success.Render(fmt.Sprintf("%d", train)), Styles.Muted.Render("train"),
		Styles.Warning.Render(fmt.Sprintf("%d", val)), Styles.Muted.Render("val"),
		Styles.Bold.Render(fmt.Sprintf("%d", total)), Styles.Muted.Render("total"),
	)
}
