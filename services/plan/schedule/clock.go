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

import "time"

// Clock abstracts the current time so tests can supply deterministic
// timestamps. All engine timestamps flow through this interface; nothing
// reads time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// timestamp formats the clock's current time in the canonical layout.
func timestamp(c Clock) string { return c.Now().Format(TimestampLayout) }

// dateStamp formats the clock's current calendar date.
func dateStamp(c Clock) string { return c.Now().Format(DateLayout) }
