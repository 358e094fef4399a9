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

import "unicode/utf8"

// lengthReward shapes responses toward a target length.
//
// Description:
//
//	The component is LengthWeight at exactly the target length and
//	falls off linearly with relative deviation, floored at 0. With
//	ScheduleLength the target starts at half the configured value and
//	grows linearly to the full value over ScheduleWindow steps, so
//	early training tolerates short responses while later training
//	expects full-length reasoning.
//
//	Length is measured in runes of the stripped response (chat-template
//	markers excluded) so multi-byte text is not over-counted.
func (s *Scorer) lengthReward(solution string, step int) float64 {
	if !s.cfg.WithLength {
		return 0
	}

	target := float64(s.cfg.TargetLength)
	if s.cfg.ScheduleLength {
		frac := float64(step) / float64(s.cfg.ScheduleWindow)
		if frac > 1 {
			frac = 1
		}
		if frac < 0 {
			frac = 0
		}
		target = target * (0.5 + 0.5*frac)
	}

	n := float64(utf8.RuneCountInString(stripChatWrappers(solution)))
	dev := (n - target) / target
	if dev < 0 {
		dev = -dev
	}
	score := s.cfg.LengthWeight * (1 - dev)
	if score < 0 {
		return 0
	}
	return score
}
