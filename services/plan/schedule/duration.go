// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schedule

import (
	"github.com/AleutianAI/AleutianPlan/pkg/validation"
)

// DurationDays derives a task duration in days from a start/end date pair.
//
// Only the date portion of the canonical "YYYY-MM-DD HH:MM:SS" format is
// considered; time-of-day is ignored. On success the result is
// max(1, days(end) - days(start)) — a duration is never less than one day,
// even when end <= start. Any parse failure (malformed string, missing
// value) yields 1 rather than an error, so callers never fail on bad dates.
//
// The function is pure; callers must re-invoke it whenever either date
// changes and never cache a stale result.
func DurationDays(startDate, endDate string) int {
	start, ok := validation.ParseDatePart(startDate)
	if !ok {
		return 1
	}
	end, ok := validation.ParseDatePart(endDate)
	if !ok {
		return 1
	}
	days := int(end.Sub(start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
