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
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPlan/services/plan/schedule"
)

var wantHeader = []string{
	"id", "text", "start_date", "end_date", "duration", "progress",
	"parent", "kind_task", "ToDo", "task_schedule", "folder",
	"url_adress", "mail", "memo", "hyperlink", "color", "textColor",
	"owner_id", "sortorder", "edit_date",
}

func TestScheduleCodec_Export(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	codec := schedule.NewScheduleCodec(store, clock)
	ctx := context.Background()

	d := simpleDraft("Kickoff", 0)
	d.Progress = floatPtr(0.25)
	d.Memo = "agenda attached"
	first, err := tree.Create(ctx, d)
	require.NoError(t, err)
	_, err = tree.Create(ctx, simpleDraft("Child step", first.ID))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, codec.Export(ctx, &buf))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "export must start with a UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two task rows")

	assert.Equal(t, wantHeader, records[0])
	assert.Equal(t, "Kickoff", records[1][1])
	assert.Equal(t, "0.25", records[1][5])
	assert.Equal(t, "agenda attached", records[1][13])
	assert.Equal(t, "Child step", records[2][1], "children sort after their parent group")
}

func TestScheduleCodec_Export_Empty(t *testing.T) {
	store := newTestStore(t)
	codec := schedule.NewScheduleCodec(store, newFakeClock())

	var buf bytes.Buffer
	require.NoError(t, codec.Export(context.Background(), &buf))

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
	assert.Equal(t, wantHeader, records[0])
}

func TestScheduleCodec_Import_ReplacesEverything(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	links := schedule.NewLinkGraph(store)
	codec := schedule.NewScheduleCodec(store, clock)
	ctx := context.Background()

	// Pre-existing state that must be gone after import.
	old, err := tree.Create(ctx, simpleDraft("Old world", 0))
	require.NoError(t, err)
	_, err = links.Create(ctx, old.ID, old.ID+1, nil)
	require.NoError(t, err)

	input := strings.Join([]string{
		"id,text,start_date,end_date,duration,progress,parent,kind_task,sortorder",
		"100,Imported root,2025-04-01 00:00:00,2025-04-10 00:00:00,9,0.5,0,2,0",
		"101,Imported child,2025-04-01 00:00:00,2025-04-03 00:00:00,2,0,100,1,0",
	}, "\n")

	report, err := codec.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, report.ImportedCount)
	assert.Equal(t, 0, report.SkippedCount)
	assert.Empty(t, report.Errors)

	_, err = tree.Get(ctx, old.ID)
	assert.ErrorIs(t, err, schedule.ErrTaskNotFound)

	remaining, err := links.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining, "import drops all links")

	// File identifiers are trusted as-is.
	imported, err := tree.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "Imported root", imported.Text)
	assert.Equal(t, schedule.KindProject, imported.Kind)
	assert.Equal(t, 0.5, imported.Progress)

	// Fresh creates after an import must not collide with imported ids.
	fresh, err := tree.Create(ctx, simpleDraft("Post-import", 0))
	require.NoError(t, err)
	assert.Greater(t, fresh.ID, int64(101))
}

func TestScheduleCodec_Import_SkipsBadRows(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	codec := schedule.NewScheduleCodec(store, clock)
	ctx := context.Background()

	input := strings.Join([]string{
		"id,text,start_date,end_date,duration,progress,parent",
		"1,Good one,2025-04-01 00:00:00,2025-04-02 00:00:00,1,0,0",
		"2,Bad duration,2025-04-01 00:00:00,2025-04-02 00:00:00,abc,0,0",
		"3,Bad progress,2025-04-01 00:00:00,2025-04-02 00:00:00,1,lots,0",
		"4,Also good,2025-04-01 00:00:00,2025-04-02 00:00:00,1,0,1",
	}, "\n")

	report, err := codec.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, report.ImportedCount)
	assert.Equal(t, 2, report.SkippedCount)
	require.Len(t, report.Errors, 2)
	// Row numbers count from the line after the header.
	assert.Contains(t, report.Errors[0], "row 3")
	assert.Contains(t, report.Errors[1], "row 4")

	tasks, err := tree.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestScheduleCodec_Import_RejectsSelfParentRows(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	codec := schedule.NewScheduleCodec(store, clock)
	ctx := context.Background()

	input := strings.Join([]string{
		"id,text,start_date,end_date,duration,progress,parent",
		"5,Own parent,2025-04-01 00:00:00,2025-04-02 00:00:00,1,0,5",
		"6,Fine,2025-04-01 00:00:00,2025-04-02 00:00:00,1,0,0",
	}, "\n")

	report, err := codec.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, report.ImportedCount)
	assert.Equal(t, 1, report.SkippedCount)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "row 2")
	assert.Contains(t, report.Errors[0], "own parent")

	_, err = tree.Get(ctx, 5)
	assert.ErrorIs(t, err, schedule.ErrTaskNotFound)
	_, err = tree.Get(ctx, 6)
	require.NoError(t, err)
}

func TestScheduleCodec_Import_DefaultsAndBOM(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	codec := schedule.NewScheduleCodec(store, clock)
	ctx := context.Background()

	// BOM-prefixed input with most cells empty: typed defaults apply.
	input := "\uFEFF" + "id,text,start_date,end_date,duration,progress,parent,kind_task,owner_id,sortorder\n" +
		"7,Sparse,,,,,,,,\n"

	report, err := codec.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, report.ImportedCount)

	task, err := tree.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, task.Duration)
	assert.Equal(t, 1, task.Kind)
	assert.Equal(t, 0.0, task.Progress)
	assert.Equal(t, int64(0), task.Parent)
	assert.Equal(t, "2025-03-10 12:00:00", task.StartDate, "missing dates default to the current time")
}

func TestScheduleCodec_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	tree := schedule.NewTaskTree(store, clock)
	links := schedule.NewLinkGraph(store)
	codec := schedule.NewScheduleCodec(store, clock)
	ctx := context.Background()

	root, err := tree.Create(ctx, simpleDraft("Round trip", 0))
	require.NoError(t, err)
	child, err := tree.Create(ctx, simpleDraft("Leaf", root.ID))
	require.NoError(t, err)
	_, err = links.Create(ctx, root.ID, child.ID, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, codec.Export(ctx, &buf))

	report, err := codec.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ImportedCount)
	assert.Equal(t, 0, report.SkippedCount)

	// Tasks survive with identifiers and hierarchy intact; links do not.
	got, err := tree.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leaf", got.Text)
	assert.Equal(t, root.ID, got.Parent)

	remaining, err := links.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
