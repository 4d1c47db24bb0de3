// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package plan

import (
	"github.com/AleutianAI/AleutianPlan/services/plan/schedule"
)

// TaskCreateRequest is the body for POST /api/tasks. Pointer fields
// distinguish absent from zero: omitting sortorder appends at tail, a
// negative value inserts at head, a non-negative value is explicit.
type TaskCreateRequest struct {
	Text      string   `json:"text" binding:"required"`
	StartDate string   `json:"start_date" binding:"required"`
	EndDate   string   `json:"end_date" binding:"required"`
	Duration  *int     `json:"duration"`
	Progress  *float64 `json:"progress" binding:"omitempty,gte=0,lte=1"`
	Parent    int64    `json:"parent"`
	Kind      *int     `json:"kind_task"`
	Owner     *int     `json:"owner_id"`
	SortOrder *int     `json:"sortorder"`

	Color        string `json:"color"`
	TextColor    string `json:"textColor"`
	ToDo         string `json:"ToDo"`
	ScheduleNote string `json:"task_schedule"`
	Folder       string `json:"folder"`
	URL          string `json:"url_adress"`
	Mail         string `json:"mail"`
	Memo         string `json:"memo"`
	Hyperlink    string `json:"hyperlink"`
	EditHistory  string `json:"edit_date"`
}

// draft converts the request into an engine draft.
func (r *TaskCreateRequest) draft() schedule.TaskDraft {
	return schedule.TaskDraft{
		Text:         r.Text,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Duration:     r.Duration,
		Progress:     r.Progress,
		Parent:       r.Parent,
		Kind:         r.Kind,
		Owner:        r.Owner,
		SortOrder:    r.SortOrder,
		Color:        r.Color,
		TextColor:    r.TextColor,
		ToDo:         r.ToDo,
		ScheduleNote: r.ScheduleNote,
		Folder:       r.Folder,
		URL:          r.URL,
		Mail:         r.Mail,
		Memo:         r.Memo,
		Hyperlink:    r.Hyperlink,
		EditHistory:  r.EditHistory,
	}
}

// TaskUpdateRequest is the body for PUT /api/tasks/:id. Only fields
// present in the JSON are applied.
type TaskUpdateRequest struct {
	Text      *string  `json:"text"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	Duration  *int     `json:"duration"`
	Progress  *float64 `json:"progress" binding:"omitempty,gte=0,lte=1"`
	Parent    *int64   `json:"parent"`
	Kind      *int     `json:"kind_task"`
	Owner     *int     `json:"owner_id"`
	SortOrder *int     `json:"sortorder"`

	Color        *string `json:"color"`
	TextColor    *string `json:"textColor"`
	ToDo         *string `json:"ToDo"`
	ScheduleNote *string `json:"task_schedule"`
	Folder       *string `json:"folder"`
	URL          *string `json:"url_adress"`
	Mail         *string `json:"mail"`
	Memo         *string `json:"memo"`
	Hyperlink    *string `json:"hyperlink"`
}

// patch converts the request into an engine patch.
func (r *TaskUpdateRequest) patch() schedule.TaskPatch {
	return schedule.TaskPatch{
		Text:         r.Text,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Duration:     r.Duration,
		Progress:     r.Progress,
		Parent:       r.Parent,
		Kind:         r.Kind,
		Owner:        r.Owner,
		SortOrder:    r.SortOrder,
		Color:        r.Color,
		TextColor:    r.TextColor,
		ToDo:         r.ToDo,
		ScheduleNote: r.ScheduleNote,
		Folder:       r.Folder,
		URL:          r.URL,
		Mail:         r.Mail,
		Memo:         r.Memo,
		Hyperlink:    r.Hyperlink,
	}
}

// ReorderRequest is the body for POST /api/tasks/reorder: a
// caller-computed batch of (id, parent, sortorder) assignments applied
// atomically. Reorder is also a reparent.
type ReorderRequest struct {
	Items []schedule.ReorderItem `json:"items" binding:"required,min=1"`
}

// ReorderResponse reports how many rows a reorder batch touched.
type ReorderResponse struct {
	Updated int `json:"updated"`
}

// LinkCreateRequest is the body for POST /api/links. Type defaults to
// finish-to-start (0) when omitted.
type LinkCreateRequest struct {
	Source int64 `json:"source" binding:"required"`
	Target int64 `json:"target" binding:"required"`
	Type   *int  `json:"type"`
}

// GanttData is the combined schedule returned by GET /api/tasks.
type GanttData struct {
	Tasks []*schedule.Task `json:"tasks"`
	Links []*schedule.Link `json:"links"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the body for GET /api/plan/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
