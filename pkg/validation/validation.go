// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation helpers for schedule data.
//
// The canonical timestamp format is "YYYY-MM-DD HH:MM:SS"; a bare
// "YYYY-MM-DD" date is accepted everywhere a timestamp is. Progress is a
// completion fraction in [0.0, 1.0].
package validation

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ProgressInRange reports whether p is a valid completion fraction.
func ProgressInRange(p float64) bool {
	return p >= 0.0 && p <= 1.0
}

// ParseDatePart parses the calendar-date portion of a canonical
// timestamp, ignoring any time of day. Returns false when the date
// portion is malformed or missing.
//
// Example:
//
//	day, ok := validation.ParseDatePart("2025-03-10 15:04:05")
//	// day == 2025-03-10T00:00:00Z, ok == true
func ParseDatePart(s string) (time.Time, bool) {
	datePart, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	t, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
