// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schedule implements the hierarchical project schedule engine:
// a tree of tasks with temporal extents, sibling ordering, and typed
// precedence links between tasks.
//
// The engine is split along its responsibilities:
//
//   - DurationDays derives a day count from a start/end date pair.
//   - SortOrderManager keeps per-sibling-group sortorder values consistent.
//   - TaskTree owns task create/read/update/delete/clone and cascade delete.
//   - LinkGraph owns the precedence links and cascade cleanup.
//   - ScheduleCodec round-trips the whole schedule through flat CSV.
//
// All mutations run against the Store contract as single transactions;
// compound operations (cascade delete, batch reorder, import-replace) are
// all-or-nothing.
package schedule

// Timestamp layouts for the canonical "YYYY-MM-DD HH:MM:SS" wire format.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Task kinds. A project is a pure grouping node, a task is a leaf unit of
// work. Other values (the frontend also uses 3 for milestones) are passed
// through unchanged.
const (
	KindTask    = 1
	KindProject = 2
)

// Owner codes, kept as the small integers the original schema uses.
const (
	OwnerSelf              = 0
	OwnerWaiting           = 10
	OwnerAwaitingSignature = 20
	OwnerOther             = 30
)

// Link types for precedence links.
const (
	FinishToStart  = 0
	StartToStart   = 1
	FinishToFinish = 2
	StartToFinish  = 3
)

// Task is a node in the schedule tree. Parent 0 means root level; the root
// is a virtual node and never a real task. JSON field names match the
// original wire format consumed by the frontend.
type Task struct {
	ID        int64   `json:"id"`
	Text      string  `json:"text"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Duration  int     `json:"duration"`
	Progress  float64 `json:"progress"`
	Parent    int64   `json:"parent"`
	Kind      int     `json:"kind_task"`
	Owner     int     `json:"owner_id"`
	SortOrder int     `json:"sortorder"`

	// Free-text fields, opaque to the engine.
	Color        string `json:"color,omitempty"`
	TextColor    string `json:"textColor,omitempty"`
	ToDo         string `json:"ToDo,omitempty"`
	ScheduleNote string `json:"task_schedule,omitempty"`
	Folder       string `json:"folder,omitempty"`
	URL          string `json:"url_adress,omitempty"`
	Mail         string `json:"mail,omitempty"`
	Memo         string `json:"memo,omitempty"`
	Hyperlink    string `json:"hyperlink,omitempty"`

	// EditHistory is a comma-separated, append-only list of distinct
	// calendar dates (YYYY-MM-DD) on which the task was modified.
	EditHistory string `json:"edit_date,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Link is a typed precedence link between two task identifiers.
type Link struct {
	ID     int64 `json:"id"`
	Source int64 `json:"source"`
	Target int64 `json:"target"`
	Type   int   `json:"type"`
}

// TaskDraft is the input for TaskTree.Create. Pointer fields distinguish
// "absent" from an explicit zero: a nil SortOrder appends at tail, a
// negative value inserts at head, a non-negative value is used as-is.
type TaskDraft struct {
	Text      string
	StartDate string
	EndDate   string
	Duration  *int
	Progress  *float64
	Parent    int64
	Kind      *int
	Owner     *int
	SortOrder *int

	Color        string
	TextColor    string
	ToDo         string
	ScheduleNote string
	Folder       string
	URL          string
	Mail         string
	Memo         string
	Hyperlink    string
	EditHistory  string
}

// TaskPatch is a partial update: only non-nil fields are applied.
// EditHistory and the created/updated stamps are engine-owned and cannot
// be patched by callers.
type TaskPatch struct {
	Text      *string
	StartDate *string
	EndDate   *string
	Duration  *int
	Progress  *float64
	Parent    *int64
	Kind      *int
	Owner     *int
	SortOrder *int

	Color        *string
	TextColor    *string
	ToDo         *string
	ScheduleNote *string
	Folder       *string
	URL          *string
	Mail         *string
	Memo         *string
	Hyperlink    *string
}

// apply copies every present patch field onto the task. Duration handling
// (recompute when a date moved) is the caller's responsibility.
func (p *TaskPatch) apply(t *Task) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.Parent != nil {
		t.Parent = *p.Parent
	}
	if p.Kind != nil {
		t.Kind = *p.Kind
	}
	if p.Owner != nil {
		t.Owner = *p.Owner
	}
	if p.SortOrder != nil {
		t.SortOrder = *p.SortOrder
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.TextColor != nil {
		t.TextColor = *p.TextColor
	}
	if p.ToDo != nil {
		t.ToDo = *p.ToDo
	}
	if p.ScheduleNote != nil {
		t.ScheduleNote = *p.ScheduleNote
	}
	if p.Folder != nil {
		t.Folder = *p.Folder
	}
	if p.URL != nil {
		t.URL = *p.URL
	}
	if p.Mail != nil {
		t.Mail = *p.Mail
	}
	if p.Memo != nil {
		t.Memo = *p.Memo
	}
	if p.Hyperlink != nil {
		t.Hyperlink = *p.Hyperlink
	}
}
