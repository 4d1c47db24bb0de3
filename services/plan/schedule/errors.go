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

import "errors"

// Sentinel errors for schedule operations. NotFound errors surface
// directly to the caller with no retry; anything else raised inside a
// transaction rolls the whole transaction back.
var (
	// ErrTaskNotFound is returned when an operation references a task
	// identifier absent from the store.
	ErrTaskNotFound = errors.New("task not found")

	// ErrLinkNotFound is returned when an operation references a link
	// identifier absent from the store.
	ErrLinkNotFound = errors.New("link not found")

	// ErrEmptyText is returned when a task is created without a display label.
	ErrEmptyText = errors.New("task text must not be empty")

	// ErrMissingDates is returned when a task is created without both a
	// start and an end date.
	ErrMissingDates = errors.New("task start and end dates are required")

	// ErrInvalidProgress is returned when progress falls outside [0.0, 1.0].
	ErrInvalidProgress = errors.New("progress must be between 0.0 and 1.0")

	// ErrParentNotFound is returned when a task references a parent that
	// is neither 0 (root level) nor an existing task.
	ErrParentNotFound = errors.New("parent task not found")

	// ErrParentCycle is returned when a reparent would make a task its own
	// ancestor.
	ErrParentCycle = errors.New("parent assignment would create a cycle")

	// ErrSelfLink is returned when a link's source and target are the same
	// task.
	ErrSelfLink = errors.New("link source and target must differ")
)
