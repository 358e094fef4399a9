// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reward

import "strings"

// Structured-response tags. A compliant tool-use step is a <think>
// block followed by one or more <tool_call> and/or <response> blocks,
// optionally wrapped in the chat template's assistant markers.
const (
	tagThink    = "think"
	tagToolCall = "tool_call"
	tagResponse = "response"
)

// Chat-template markers stripped before structural checks. The reward
// is about the response structure, not the serving template.
var chatWrappers = []string{
	"<|im_start|>assistant",
	"<|im_start|>",
	"<|im_end|>",
	"<|endoftext|>",
}

// stripChatWrappers removes serving-template markers and surrounding
// whitespace from a generated solution.
func stripChatWrappers(s string) string {
	for _, w := range chatWrappers {
		s = strings.ReplaceAll(s, w, "")
	}
	return strings.TrimSpace(s)
}

// extractSections returns the bodies of every <tag>...</tag> block.
func extractSections(s, tag string) []string {
	open := "<" + tag + ">"
	close := "</" + tag + ">"
	var out []string
	for {
		start := strings.Index(s, open)
		if start < 0 {
			return out
		}
		s = s[start+len(open):]
		end := strings.Index(s, close)
		if end < 0 {
			return out
		}
		out = append(out, strings.TrimSpace(s[:end]))
		s = s[end+len(close):]
	}
}

// formatReward grades structural compliance: 1 for a well-formed
// response, 0 otherwise.
//
// Description:
//
//	A well-formed response, after chat-template stripping, is:
//
//	  <think>...</think>
//	  followed by one or more <tool_call>...</tool_call> and/or
//	  <response>...</response> blocks,
//
//	with nothing but whitespace between and after the blocks. A think
//	block alone, missing close tags, stray trailing prose, or blocks in
//	the wrong order all score 0. The rule is all-or-nothing; partial
//	structure is graded through the correctness schedule, not here.
func formatReward(solution string) float64 {
	s := stripChatWrappers(solution)

	rest, ok := consumeBlock(s, tagThink)
	if !ok {
		return 0
	}

	blocks := 0
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			break
		}
		var consumed bool
		for _, tag := range []string{tagToolCall, tagResponse} {
			if r, ok := consumeBlock(rest, tag); ok {
				rest = r
				blocks++
				consumed = true
				break
			}
		}
		if !consumed {
			return 0 // stray content outside recognized blocks
		}
	}

	if blocks == 0 {
		return 0
	}
	return 1
}

// consumeBlock consumes a leading <tag>...</tag> block and returns the
// remainder. The block must start the (whitespace-trimmed) input.
func consumeBlock(s, tag string) (string, bool) {
	s = strings.TrimSpace(s)
	open := "<" + tag + ">"
	close := "</" + tag + ">"
	if !strings.HasPrefix(s, open) {
		return s, false
	}
	rest := s[len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return s, false
	}
	return rest[end+len(close):], true
}
