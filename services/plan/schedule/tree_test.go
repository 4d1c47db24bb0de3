// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schedule_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPlan/services/plan/schedule"
	"github.com/AleutianAI/AleutianPlan/services/plan/storage"
)

// fakeClock is a settable Clock for deterministic timestamps.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func newTestStore(t *testing.T) *storage.BadgerStore {
	t.Helper()
	store, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }

func simpleDraft(text string, parent int64) schedule.TaskDraft {
	return schedule.TaskDraft{
		Text:      text,
		StartDate: "2025-03-10 00:00:00",
		EndDate:   "2025-03-15 00:00:00",
		Parent:    parent,
	}
}

func TestTaskTree_Create_Defaults(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	ctx := context.Background()

	task, err := tree.Create(ctx, simpleDraft("Design review", 0))
	require.NoError(t, err)

	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, 5, task.Duration, "derived from the date pair")
	assert.Equal(t, 0.0, task.Progress)
	assert.Equal(t, schedule.KindTask, task.Kind)
	assert.Equal(t, schedule.OwnerSelf, task.Owner)
	assert.Equal(t, 0, task.SortOrder, "first child of the root group")
	assert.Equal(t, "2025-03-10 12:00:00", task.CreatedAt)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestTaskTree_Create_ExplicitDurationWins(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())

	d := simpleDraft("Fixed-length task", 0)
	d.Duration = intPtr(42)
	task, err := tree.Create(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 42, task.Duration)
}

func TestTaskTree_Create_Validation(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		d := simpleDraft("   ", 0)
		_, err := tree.Create(ctx, d)
		assert.ErrorIs(t, err, schedule.ErrEmptyText)
	})

	t.Run("missing dates", func(t *testing.T) {
		d := simpleDraft("No dates", 0)
		d.EndDate = ""
		_, err := tree.Create(ctx, d)
		assert.ErrorIs(t, err, schedule.ErrMissingDates)
	})

	t.Run("progress out of range", func(t *testing.T) {
		d := simpleDraft("Overdone", 0)
		d.Progress = floatPtr(1.5)
		_, err := tree.Create(ctx, d)
		assert.ErrorIs(t, err, schedule.ErrInvalidProgress)
	})

	t.Run("nonexistent parent", func(t *testing.T) {
		d := simpleDraft("Orphan", 999)
		_, err := tree.Create(ctx, d)
		assert.ErrorIs(t, err, schedule.ErrParentNotFound)
	})
}

func TestTaskTree_Create_SortOrderPolicies(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())
	ctx := context.Background()

	// Two tail appends: orders 0 and 1.
	a, err := tree.Create(ctx, simpleDraft("A", 0))
	require.NoError(t, err)
	b, err := tree.Create(ctx, simpleDraft("B", 0))
	require.NoError(t, err)
	assert.Equal(t, 0, a.SortOrder)
	assert.Equal(t, 1, b.SortOrder)

	// Head insert takes 0 and shifts the whole group.
	d := simpleDraft("C", 0)
	d.SortOrder = intPtr(-1)
	c, err := tree.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 0, c.SortOrder)

	shiftedA, err := tree.Get(ctx, a.ID)
	require.NoError(t, err)
	shiftedB, err := tree.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, shiftedA.SortOrder)
	assert.Equal(t, 2, shiftedB.SortOrder)

	// Explicit non-negative order is used as-is.
	e := simpleDraft("D", 0)
	e.SortOrder = intPtr(7)
	dTask, err := tree.Create(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, 7, dTask.SortOrder)

	// Ordering is per sibling group: a child group starts at 0 again.
	child, err := tree.Create(ctx, simpleDraft("child", a.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, child.SortOrder)
}

func TestTaskTree_Update_RecomputesDuration(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	ctx := context.Background()

	task, err := tree.Create(ctx, simpleDraft("Stretchy", 0))
	require.NoError(t, err)
	require.Equal(t, 5, task.Duration)

	// Moving the end date recomputes duration even when the patch carries
	// a stale explicit duration.
	updated, err := tree.Update(ctx, task.ID, schedule.TaskPatch{
		EndDate:  stringPtr("2025-03-20 00:00:00"),
		Duration: intPtr(99),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Duration)

	// A duration-only patch is respected: no date moved.
	updated, err = tree.Update(ctx, task.ID, schedule.TaskPatch{Duration: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Duration)
}

func TestTaskTree_Update_EditHistory(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	ctx := context.Background()

	task, err := tree.Create(ctx, simpleDraft("Tracked", 0))
	require.NoError(t, err)
	require.Empty(t, task.EditHistory)

	// Two updates on the same day record the day once.
	updated, err := tree.Update(ctx, task.ID, schedule.TaskPatch{Text: stringPtr("Tracked v2")})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", updated.EditHistory)

	updated, err = tree.Update(ctx, task.ID, schedule.TaskPatch{Text: stringPtr("Tracked v3")})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", updated.EditHistory)

	// A later day appends.
	clock.now = clock.now.AddDate(0, 0, 1)
	updated, err = tree.Update(ctx, task.ID, schedule.TaskPatch{Text: stringPtr("Tracked v4")})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10,2025-03-11", updated.EditHistory)
}

func TestTaskTree_Update_NotFound(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())

	_, err := tree.Update(context.Background(), 404, schedule.TaskPatch{Text: stringPtr("x")})
	assert.ErrorIs(t, err, schedule.ErrTaskNotFound)
}

func TestTaskTree_Update_ParentCycle(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())
	ctx := context.Background()

	root, err := tree.Create(ctx, simpleDraft("root", 0))
	require.NoError(t, err)
	mid, err := tree.Create(ctx, simpleDraft("mid", root.ID))
	require.NoError(t, err)
	leaf, err := tree.Create(ctx, simpleDraft("leaf", mid.ID))
	require.NoError(t, err)

	t.Run("self parent", func(t *testing.T) {
		_, err := tree.Update(ctx, root.ID, schedule.TaskPatch{Parent: int64Ptr(root.ID)})
		assert.ErrorIs(t, err, schedule.ErrParentCycle)
	})

	t.Run("descendant parent", func(t *testing.T) {
		_, err := tree.Update(ctx, root.ID, schedule.TaskPatch{Parent: int64Ptr(leaf.ID)})
		assert.ErrorIs(t, err, schedule.ErrParentCycle)
	})

	t.Run("sideways reparent allowed", func(t *testing.T) {
		got, err := tree.Update(ctx, leaf.ID, schedule.TaskPatch{Parent: int64Ptr(root.ID)})
		require.NoError(t, err)
		assert.Equal(t, root.ID, got.Parent)
	})
}

func TestTaskTree_Delete_Cascades(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())
	links := schedule.NewLinkGraph(store)
	ctx := context.Background()

	// root -> child -> grandchild, plus a sibling that must survive.
	root, err := tree.Create(ctx, simpleDraft("root", 0))
	require.NoError(t, err)
	child, err := tree.Create(ctx, simpleDraft("child", root.ID))
	require.NoError(t, err)
	grandchild, err := tree.Create(ctx, simpleDraft("grandchild", child.ID))
	require.NoError(t, err)
	survivor, err := tree.Create(ctx, simpleDraft("survivor", 0))
	require.NoError(t, err)

	// One link inside the doomed subtree, one touching it, one outside.
	_, err = links.Create(ctx, child.ID, grandchild.ID, nil)
	require.NoError(t, err)
	_, err = links.Create(ctx, survivor.ID, child.ID, nil)
	require.NoError(t, err)
	outside, err := links.Create(ctx, survivor.ID, root.ID+100, nil)
	require.NoError(t, err)

	result, err := tree.Delete(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, result.DeletedID)
	assert.ElementsMatch(t, []int64{child.ID, grandchild.ID}, result.DeletedDescendants)

	_, err = tree.Get(ctx, grandchild.ID)
	assert.ErrorIs(t, err, schedule.ErrTaskNotFound)

	got, err := tree.Get(ctx, survivor.ID)
	require.NoError(t, err)
	assert.Equal(t, "survivor", got.Text)

	remaining, err := links.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1, "only the link not touching the subtree survives")
	assert.Equal(t, outside.ID, remaining[0].ID)
}

func TestTaskTree_Delete_LeafReportsNoDescendants(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())
	ctx := context.Background()

	task, err := tree.Create(ctx, simpleDraft("leaf", 0))
	require.NoError(t, err)

	result, err := tree.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, result.DeletedDescendants)

	_, err = tree.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, schedule.ErrTaskNotFound)
}

func TestTaskTree_Delete_TerminatesOnCyclicData(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	codec := schedule.NewScheduleCodec(store, clock)
	ctx := context.Background()

	// Import trusts parent cells, so two rows can form a mutual cycle
	// that no engine mutation would have allowed.
	input := "id,text,start_date,end_date,duration,progress,parent\n" +
		"1,A,2025-04-01 00:00:00,2025-04-02 00:00:00,1,0,2\n" +
		"2,B,2025-04-01 00:00:00,2025-04-02 00:00:00,1,0,1\n"
	report, err := codec.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, report.ImportedCount)

	// The descendant walk must still terminate and take the whole cycle
	// down with the deleted task.
	result, err := tree.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, result.DeletedDescendants)

	_, err = tree.Get(ctx, 1)
	assert.ErrorIs(t, err, schedule.ErrTaskNotFound)
	_, err = tree.Get(ctx, 2)
	assert.ErrorIs(t, err, schedule.ErrTaskNotFound)
}

func TestTaskTree_Clone(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	ctx := context.Background()

	d := simpleDraft("Prototype", 0)
	d.Progress = floatPtr(0.6)
	d.Memo = "carry me over"
	src, err := tree.Create(ctx, d)
	require.NoError(t, err)

	// Give the source some edit history to verify it is stripped.
	src, err = tree.Update(ctx, src.ID, schedule.TaskPatch{Text: stringPtr("Prototype v2")})
	require.NoError(t, err)
	require.NotEmpty(t, src.EditHistory)

	clock.now = clock.now.Add(2 * time.Hour)
	clone, err := tree.Clone(ctx, src.ID)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, clone.ID)
	assert.Equal(t, src.Text, clone.Text)
	assert.Equal(t, src.Memo, clone.Memo)
	assert.Equal(t, 0.0, clone.Progress, "progress resets")
	assert.Equal(t, src.SortOrder+1, clone.SortOrder)
	assert.Empty(t, clone.EditHistory)
	assert.Equal(t, "2025-03-10 14:00:00", clone.CreatedAt)

	// Source is untouched.
	after, err := tree.Get(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, src.Progress, after.Progress)
}

func TestTaskTree_List_Ordering(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())
	ctx := context.Background()

	a, err := tree.Create(ctx, simpleDraft("A", 0))
	require.NoError(t, err)
	_, err = tree.Create(ctx, simpleDraft("B", 0))
	require.NoError(t, err)
	_, err = tree.Create(ctx, simpleDraft("A1", a.ID))
	require.NoError(t, err)

	// Head-insert C so the stored insertion order differs from the
	// listing order.
	d := simpleDraft("C", 0)
	d.SortOrder = intPtr(-1)
	_, err = tree.Create(ctx, d)
	require.NoError(t, err)

	tasks, err := tree.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	texts := make([]string, len(tasks))
	for i, task := range tasks {
		texts[i] = task.Text
	}
	assert.Equal(t, []string{"C", "A", "B", "A1"}, texts)
}

func TestTaskTree_Reorder(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())
	ctx := context.Background()

	a, err := tree.Create(ctx, simpleDraft("A", 0))
	require.NoError(t, err)
	b, err := tree.Create(ctx, simpleDraft("B", 0))
	require.NoError(t, err)
	c, err := tree.Create(ctx, simpleDraft("C", 0))
	require.NoError(t, err)

	// Swap A and C, and reparent B under A in the same batch.
	updated, err := tree.Reorder(ctx, []schedule.ReorderItem{
		{ID: a.ID, Parent: 0, SortOrder: 2},
		{ID: c.ID, Parent: 0, SortOrder: 0},
		{ID: b.ID, Parent: a.ID, SortOrder: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	gotB, err := tree.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, gotB.Parent)

	tasks, err := tree.List(ctx)
	require.NoError(t, err)
	texts := make([]string, len(tasks))
	for i, task := range tasks {
		texts[i] = task.Text
	}
	assert.Equal(t, []string{"C", "A", "B"}, texts)
}

func TestTaskTree_Reorder_AtomicOnFailure(t *testing.T) {
	store := newTestStore(t)
	tree := schedule.NewTaskTree(store, newFakeClock())
	ctx := context.Background()

	a, err := tree.Create(ctx, simpleDraft("A", 0))
	require.NoError(t, err)
	b, err := tree.Create(ctx, simpleDraft("B", 0))
	require.NoError(t, err)

	// Second item references a missing task; the whole batch must roll
	// back, leaving A's order untouched.
	_, err = tree.Reorder(ctx, []schedule.ReorderItem{
		{ID: a.ID, Parent: 0, SortOrder: 5},
		{ID: 999, Parent: 0, SortOrder: 0},
	})
	assert.ErrorIs(t, err, schedule.ErrTaskNotFound)

	gotA, err := tree.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotA.SortOrder)

	// A cycle anywhere in the batch rejects the batch.
	_, err = tree.Reorder(ctx, []schedule.ReorderItem{
		{ID: b.ID, Parent: b.ID, SortOrder: 0},
	})
	assert.ErrorIs(t, err, schedule.ErrParentCycle)
}

func TestLinkGraph_CreateAndDelete(t *testing.T) {
	store := newTestStore(t)
	links := schedule.NewLinkGraph(store)
	ctx := context.Background()

	link, err := links.Create(ctx, 1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, schedule.FinishToStart, link.Type, "type defaults to finish-to-start")
	assert.NotZero(t, link.ID)

	typed, err := links.Create(ctx, 2, 3, intPtr(schedule.FinishToFinish))
	require.NoError(t, err)
	assert.Equal(t, schedule.FinishToFinish, typed.Type)

	// Duplicates are allowed; self-loops are not.
	_, err = links.Create(ctx, 1, 2, nil)
	require.NoError(t, err)
	_, err = links.Create(ctx, 5, 5, nil)
	assert.ErrorIs(t, err, schedule.ErrSelfLink)

	all, err := links.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, links.Delete(ctx, link.ID))
	err = links.Delete(ctx, link.ID)
	assert.ErrorIs(t, err, schedule.ErrLinkNotFound)
}

func TestLinkGraph_PurgeEndpoints(t *testing.T) {
	store := newTestStore(t)
	links := schedule.NewLinkGraph(store)
	ctx := context.Background()

	_, err := links.Create(ctx, 1, 2, nil)
	require.NoError(t, err)
	_, err = links.Create(ctx, 3, 1, nil)
	require.NoError(t, err)
	keep, err := links.Create(ctx, 2, 3, nil)
	require.NoError(t, err)

	purged, err := links.PurgeEndpoints(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	// Idempotent: a second purge finds nothing.
	purged, err = links.PurgeEndpoints(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, 0, purged)

	all, err := links.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)
}
