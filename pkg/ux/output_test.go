// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// withLevel runs f with the personality forced to level.
func withLevel(t *testing.T, level PersonalityLevel, f func()) {
	t.Helper()
	prev := GetPersonality().Level
	SetPersonalityLevel(level)
	defer SetPersonalityLevel(prev)
	f()
}

func TestMachineOutput(t *testing.T) {
	withLevel(t, PersonalityMachine, func() {
		if got := captureStdout(func() { Success("done") }); got != "OK: done\n" {
			t.Errorf("Success = %q, want OK: done", got)
		}
		if got := captureStderr(func() { Warning("careful") }); got != "WARN: careful\n" {
			t.Errorf("Warning = %q", got)
		}
		if got := captureStderr(func() { Error("broken") }); got != "ERROR: broken\n" {
			t.Errorf("Error = %q", got)
		}
		if got := captureStdout(func() { Info("detail") }); got != "detail\n" {
			t.Errorf("Info = %q", got)
		}
		if got := captureStdout(func() { Title("heading") }); got != "" {
			t.Errorf("Title should be silent in machine mode, got %q", got)
		}
	})
}

func TestMachineFileStatus(t *testing.T) {
	withLevel(t, PersonalityMachine, func() {
		got := captureStdout(func() { FileStatus("out/train.jsonl", IconSuccess, "written") })
		want := "✓\tout/train.jsonl\twritten\n"
		if got != want {
			t.Errorf("FileStatus = %q, want %q", got, want)
		}
	})
}

func TestMachineSummary(t *testing.T) {
	withLevel(t, PersonalityMachine, func() {
		got := captureStdout(func() { Summary(90, 10, 100) })
		if got != "SUMMARY: train=90 val=10 total=100\n" {
			t.Errorf("Summary = %q", got)
		}
	})
}

func TestFullOutputContainsText(t *testing.T) {
	// Styled output varies with the terminal, so only assert the text
	// itself survives styling.
	withLevel(t, PersonalityFull, func() {
		cases := map[string]func(){
			"done":    func() { Success("done") },
			"heading": func() { Title("heading") },
			"detail":  func() { Info("detail") },
		}
		for want, print := range cases {
			if got := captureStdout(print); !strings.Contains(got, want) {
				t.Errorf("output %q does not contain %q", got, want)
			}
		}
	})
}

func TestIconRender(t *testing.T) {
	// Semantic icons get styled; decorative ones pass through.
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconPending, IconArrow, IconBullet, IconAnchor, IconShip, IconWave} {
		if got := icon.Render(); !strings.Contains(got, string(icon)) {
			t.Errorf("Render of %q lost the glyph: %q", icon, got)
		}
	}
}
