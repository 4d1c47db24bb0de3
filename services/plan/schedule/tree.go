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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianPlan/pkg/validation"
)

// TaskTree owns the set of tasks and enforces the parent/child and
// ordering invariants. Every public operation is a single transaction
// against the backing store.
type TaskTree struct {
	store  Store
	clock  Clock
	orders SortOrderManager
}

// NewTaskTree creates a TaskTree over the given store. A nil clock falls
// back to the system clock.
func NewTaskTree(store Store, clock Clock) *TaskTree {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TaskTree{store: store, clock: clock}
}

// DeleteResult reports the outcome of a cascade delete: the requested
// task plus every transitive descendant that was removed with it.
type DeleteResult struct {
	DeletedID          int64   `json:"deleted_id"`
	DeletedDescendants []int64 `json:"deleted_children"`
}

// Create validates and persists a new task.
//
// Duration is taken from the draft when supplied, otherwise derived from
// the date pair via DurationDays. The sortorder policy follows the draft's
// SortOrder field: nil appends at tail, negative inserts at head (shifting
// the sibling group), non-negative is used as-is. CreatedAt/UpdatedAt are
// stamped from the engine clock; the store assigns the identifier.
func (tt *TaskTree) Create(ctx context.Context, draft TaskDraft) (task *Task, err error) {
	defer func() { observeTaskOp("create", err) }()

	if strings.TrimSpace(draft.Text) == "" {
		return nil, ErrEmptyText
	}
	if draft.StartDate == "" || draft.EndDate == "" {
		return nil, ErrMissingDates
	}
	if draft.Progress != nil && !validation.ProgressInRange(*draft.Progress) {
		return nil, ErrInvalidProgress
	}

	now := timestamp(tt.clock)
	t := &Task{
		Text:         draft.Text,
		StartDate:    draft.StartDate,
		EndDate:      draft.EndDate,
		Duration:     DurationDays(draft.StartDate, draft.EndDate),
		Parent:       draft.Parent,
		Kind:         KindTask,
		Owner:        OwnerSelf,
		Color:        draft.Color,
		TextColor:    draft.TextColor,
		ToDo:         draft.ToDo,
		ScheduleNote: draft.ScheduleNote,
		Folder:       draft.Folder,
		URL:          draft.URL,
		Mail:         draft.Mail,
		Memo:         draft.Memo,
		Hyperlink:    draft.Hyperlink,
		EditHistory:  draft.EditHistory,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if draft.Duration != nil {
		t.Duration = *draft.Duration
	}
	if draft.Progress != nil {
		t.Progress = *draft.Progress
	}
	if draft.Kind != nil {
		t.Kind = *draft.Kind
	}
	if draft.Owner != nil {
		t.Owner = *draft.Owner
	}

	err = tt.store.Update(ctx, func(tx Tx) error {
		if t.Parent != 0 {
			if _, perr := tx.Task(t.Parent); perr != nil {
				return fmt.Errorf("parent %d: %w", t.Parent, ErrParentNotFound)
			}
		}
		order, oerr := tt.orders.Resolve(tx, t.Parent, draft.SortOrder)
		if oerr != nil {
			return oerr
		}
		t.SortOrder = order
		return tx.InsertTask(t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a task by identifier or ErrTaskNotFound.
func (tt *TaskTree) Get(ctx context.Context, id int64) (*Task, error) {
	var t *Task
	err := tt.store.View(ctx, func(tx Tx) error {
		var terr error
		t, terr = tx.Task(id)
		return terr
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies a partial update to a task.
//
// Only fields present in the patch change. When either date field is
// present, duration is recomputed from the resulting start/end pair (the
// unchanged date keeps its stored value), overriding any duration the
// patch carried. UpdatedAt is always refreshed, and today's date is
// appended to the edit history unless already recorded.
func (tt *TaskTree) Update(ctx context.Context, id int64, patch TaskPatch) (task *Task, err error) {
	defer func() { observeTaskOp("update", err) }()

	if patch.Progress != nil && !validation.ProgressInRange(*patch.Progress) {
		return nil, ErrInvalidProgress
	}

	var t *Task
	err = tt.store.Update(ctx, func(tx Tx) error {
		var terr error
		t, terr = tx.Task(id)
		if terr != nil {
			return terr
		}

		if patch.Parent != nil && *patch.Parent != t.Parent {
			if verr := validateParent(tx, id, *patch.Parent); verr != nil {
				return verr
			}
		}

		patch.apply(t)
		if patch.StartDate != nil || patch.EndDate != nil {
			t.Duration = DurationDays(t.StartDate, t.EndDate)
		}
		t.UpdatedAt = timestamp(tt.clock)
		t.EditHistory = appendEditDay(t.EditHistory, dateStamp(tt.clock))
		return tx.UpdateTask(t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task, every transitive descendant, and every link
// touching any removed identifier, all in one transaction.
//
// Descendants are collected with an explicit worklist over the parent
// relation (no recursion), deleted before the task itself, and the full
// removed identifier set is purged from the link graph in a single
// set-membership pass.
func (tt *TaskTree) Delete(ctx context.Context, id int64) (res *DeleteResult, err error) {
	defer func() { observeTaskOp("delete", err) }()

	result := &DeleteResult{DeletedID: id, DeletedDescendants: []int64{}}
	err = tt.store.Update(ctx, func(tx Tx) error {
		if _, terr := tx.Task(id); terr != nil {
			return terr
		}

		descendants, derr := collectDescendants(tx, id)
		if derr != nil {
			return derr
		}
		result.DeletedDescendants = descendants

		for _, did := range descendants {
			if derr := tx.DeleteTask(did); derr != nil {
				return derr
			}
		}
		if derr := tx.DeleteTask(id); derr != nil {
			return derr
		}

		removed := make(map[int64]struct{}, len(descendants)+1)
		removed[id] = struct{}{}
		for _, did := range descendants {
			removed[did] = struct{}{}
		}
		purged, perr := purgeLinks(tx, removed)
		if perr != nil {
			return perr
		}
		linksPurgedTotal.Add(float64(purged))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clone copies a task into a new row. The clone keeps every field of the
// source except the identifier (freshly assigned), progress (reset to 0),
// sortorder (source's + 1), and edit history (stripped); timestamps are
// stamped fresh. Descendants and links are not cloned.
func (tt *TaskTree) Clone(ctx context.Context, id int64) (task *Task, err error) {
	defer func() { observeTaskOp("clone", err) }()

	var clone Task
	err = tt.store.Update(ctx, func(tx Tx) error {
		src, terr := tx.Task(id)
		if terr != nil {
			return terr
		}
		clone = *src
		clone.ID = 0
		clone.Progress = 0
		clone.SortOrder = src.SortOrder + 1
		clone.EditHistory = ""
		now := timestamp(tt.clock)
		clone.CreatedAt = now
		clone.UpdatedAt = now
		return tx.InsertTask(&clone)
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

// List returns every task ordered by (parent, sortorder), ties broken by
// identifier. The listing is flat; reconstructing the visual tree is the
// caller's responsibility.
func (tt *TaskTree) List(ctx context.Context) ([]*Task, error) {
	var tasks []*Task
	err := tt.store.View(ctx, func(tx Tx) error {
		var terr error
		tasks, terr = tx.Tasks()
		return terr
	})
	if err != nil {
		return nil, err
	}
	sortTasks(tasks)
	return tasks, nil
}

// Reorder applies a caller-computed batch of (id, parent, sortorder)
// assignments in one all-or-nothing transaction, refreshing UpdatedAt on
// every affected row. Each new parent must exist (or be 0) and must not
// create a cycle; any failure rolls the whole batch back and surfaces as
// a single error.
func (tt *TaskTree) Reorder(ctx context.Context, items []ReorderItem) (updated int, err error) {
	defer func() { observeTaskOp("reorder", err) }()

	err = tt.store.Update(ctx, func(tx Tx) error {
		for _, it := range items {
			t, terr := tx.Task(it.ID)
			if terr != nil {
				return terr
			}
			if it.Parent != t.Parent {
				if verr := validateParent(tx, it.ID, it.Parent); verr != nil {
					return verr
				}
			}
		}
		var rerr error
		updated, rerr = tt.orders.ReorderBatch(tx, items, timestamp(tt.clock))
		return rerr
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// validateParent checks that a prospective parent exists (or is root) and
// that assigning it to task id would not make the task its own ancestor.
func validateParent(tx Tx, id, parent int64) error {
	if parent == 0 {
		return nil
	}
	if parent == id {
		return ErrParentCycle
	}
	if _, err := tx.Task(parent); err != nil {
		return fmt.Errorf("parent %d: %w", parent, ErrParentNotFound)
	}
	descendants, err := collectDescendants(tx, id)
	if err != nil {
		return err
	}
	for _, did := range descendants {
		if did == parent {
			return ErrParentCycle
		}
	}
	return nil
}

// collectDescendants walks the parent relation with an explicit worklist
// and returns every transitive descendant of id in level order. The
// visited set keeps the walk total even if stored data contains a parent
// cycle (trusted imports bypass the engine's cycle guard).
func collectDescendants(tx Tx, id int64) ([]int64, error) {
	descendants := []int64{}
	visited := map[int64]struct{}{id: {}}
	queue := []int64{id}
	for len(queue) > 0 {
		pid := queue[0]
		queue = queue[1:]
		children, err := tx.TasksByParent(pid)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if _, ok := visited[c.ID]; ok {
				continue
			}
			visited[c.ID] = struct{}{}
			descendants = append(descendants, c.ID)
			queue = append(queue, c.ID)
		}
	}
	return descendants, nil
}

// appendEditDay appends a calendar day to the comma-separated edit
// history, deduplicating by exact token comparison so a day that is a
// substring of another entry cannot suppress the append.
func appendEditDay(history, day string) string {
	if history == "" {
		return day
	}
	for _, entry := range strings.Split(history, ",") {
		if strings.TrimSpace(entry) == day {
			return history
		}
	}
	return history + "," + day
}

// sortTasks orders tasks by (parent, sortorder, id).
func sortTasks(tasks []*Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Parent != tasks[j].Parent {
			return tasks[i].Parent < tasks[j].Parent
		}
		if tasks[i].SortOrder != tasks[j].SortOrder {
			return tasks[i].SortOrder < tasks[j].SortOrder
		}
		return tasks[i].ID < tasks[j].ID
	})
}
