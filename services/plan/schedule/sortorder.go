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

// SortOrderManager assigns and adjusts sortorder values within a sibling
// group (tasks sharing a parent). Sibling order is advisory-dense, not a
// compact permutation: gaps are tolerated, and the explicit-order path can
// produce duplicates if callers misuse it. The manager is stateless; every
// method operates inside a caller-supplied transaction.
type SortOrderManager struct{}

// ReorderItem is one caller-computed (id, parent, sortorder) assignment.
// Reorder is also a reparent operation: the item's Parent is applied even
// when it differs from the task's current parent.
type ReorderItem struct {
	ID        int64 `json:"id"`
	Parent    int64 `json:"parent"`
	SortOrder int   `json:"sortorder"`
}

// NextTailOrder returns a sortorder strictly greater than every existing
// sibling's in the group, or 0 for an empty group.
func (SortOrderManager) NextTailOrder(tx Tx, parent int64) (int, error) {
	siblings, err := tx.TasksByParent(parent)
	if err != nil {
		return 0, err
	}
	next := 0
	for _, s := range siblings {
		if s.SortOrder >= next {
			next = s.SortOrder + 1
		}
	}
	return next, nil
}

// InsertAtHead shifts every existing sibling in the group up by one and
// returns 0 for the new member.
func (SortOrderManager) InsertAtHead(tx Tx, parent int64) (int, error) {
	siblings, err := tx.TasksByParent(parent)
	if err != nil {
		return 0, err
	}
	for _, s := range siblings {
		s.SortOrder++
		if err := tx.UpdateTask(s); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

// Resolve picks the sortorder for a new member of the group:
// nil requests append-at-tail, a negative value inserts at head (shifting
// the group), and a non-negative value is used as-is with no renumbering —
// collisions on the explicit path are the caller's responsibility.
func (m SortOrderManager) Resolve(tx Tx, parent int64, requested *int) (int, error) {
	switch {
	case requested == nil:
		return m.NextTailOrder(tx, parent)
	case *requested < 0:
		return m.InsertAtHead(tx, parent)
	default:
		return *requested, nil
	}
}

// ReorderBatch applies a caller-supplied set of (parent, sortorder)
// assignments to existing tasks, stamping each affected row's UpdatedAt.
// The batch trusts the caller's ordering completely; beyond existence of
// the referenced tasks no consistency of the result is validated. Any
// failure aborts the batch (the enclosing transaction rolls back).
func (SortOrderManager) ReorderBatch(tx Tx, items []ReorderItem, stamp string) (int, error) {
	for _, it := range items {
		t, err := tx.Task(it.ID)
		if err != nil {
			return 0, err
		}
		t.Parent = it.Parent
		t.SortOrder = it.SortOrder
		t.UpdatedAt = stamp
		if err := tx.UpdateTask(t); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}
