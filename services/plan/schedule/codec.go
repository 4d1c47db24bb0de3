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
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// utf8BOM is prepended to exports for compatibility with spreadsheet
// readers (Excel in particular).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// exportHeader is the fixed column order of the exchange format. The
// names (including the historical "url_adress" spelling) and order are
// part of the contract: prior exports must keep round-tripping.
var exportHeader = []string{
	"id", "text", "start_date", "end_date", "duration", "progress",
	"parent", "kind_task", "ToDo", "task_schedule", "folder",
	"url_adress", "mail", "memo", "hyperlink", "color", "textColor",
	"owner_id", "sortorder", "edit_date",
}

// ImportReport aggregates the outcome of a CSV import. Every data row is
// either imported or skipped; each skip contributes one error message
// naming its row number (1-indexed after the header, so the first data
// row is row 2).
type ImportReport struct {
	ImportedCount int      `json:"imported_count"`
	SkippedCount  int      `json:"skipped_count"`
	Errors        []string `json:"errors"`
}

// ScheduleCodec translates between the live schedule and the flat CSV
// exchange format. Links are not part of the exchange format; an
// export/import round trip preserves tasks and drops links.
type ScheduleCodec struct {
	store Store
	clock Clock
}

// NewScheduleCodec creates a codec over the given store. A nil clock
// falls back to the system clock.
func NewScheduleCodec(store Store, clock Clock) *ScheduleCodec {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ScheduleCodec{store: store, clock: clock}
}

// Export writes the full task set as CSV: a UTF-8 byte-order mark, the
// header row, then one row per task ordered by (parent, sortorder).
// Empty optional fields are emitted as empty cells.
func (sc *ScheduleCodec) Export(ctx context.Context, w io.Writer) error {
	var tasks []*Task
	if err := sc.store.View(ctx, func(tx Tx) error {
		var terr error
		tasks, terr = tx.Tasks()
		return terr
	}); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	sortTasks(tasks)

	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, t := range tasks {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Text,
			t.StartDate,
			t.EndDate,
			strconv.Itoa(t.Duration),
			strconv.FormatFloat(t.Progress, 'g', -1, 64),
			strconv.FormatInt(t.Parent, 10),
			strconv.Itoa(t.Kind),
			t.ToDo,
			t.ScheduleNote,
			t.Folder,
			t.URL,
			t.Mail,
			t.Memo,
			t.Hyperlink,
			t.Color,
			t.TextColor,
			strconv.Itoa(t.Owner),
			strconv.Itoa(t.SortOrder),
			t.EditHistory,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces the entire schedule with the contents of a CSV stream.
//
// The operation is destructive and has no merge mode: all links and all
// tasks are deleted before any imported row is inserted, and the whole
// replacement commits as one transaction. Row parsing uses local
// recovery: a row whose cells cannot be coerced is skipped, recorded as a
// message tagged with its row number, and processing continues — the only
// partial-failure tolerance in the system. Identifiers from the file are
// trusted and reused, not reassigned.
func (sc *ScheduleCodec) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("import: read: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("import: header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	now := timestamp(sc.clock)
	report := &ImportReport{Errors: []string{}}
	var tasks []*Task

	for rowNum := 2; ; rowNum++ {
		record, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			report.SkippedCount++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, rerr))
			importRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		t, perr := parseTaskRow(record, cols, now)
		if perr != nil {
			report.SkippedCount++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, perr))
			importRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		tasks = append(tasks, t)
		report.ImportedCount++
		importRowsTotal.WithLabelValues("imported").Inc()
	}

	err = sc.store.Update(ctx, func(tx Tx) error {
		if derr := tx.DeleteAllLinks(); derr != nil {
			return derr
		}
		if derr := tx.DeleteAllTasks(); derr != nil {
			return derr
		}
		for _, t := range tasks {
			if ierr := tx.InsertTask(t); ierr != nil {
				return ierr
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return report, nil
}

// parseTaskRow coerces one CSV record into a Task with the exchange
// format's typed defaults: 0 for id/parent/owner/sortorder, 1 for
// duration and kind, 0.0 for progress, and the current timestamp for
// missing dates. A row naming itself as its own parent is rejected; it
// would corrupt the tree invariant the engine enforces on mutations.
func parseTaskRow(record []string, cols map[string]int, now string) (*Task, error) {
	id, err := intCell(record, cols, "id", 0)
	if err != nil {
		return nil, err
	}
	duration, err := intCell(record, cols, "duration", 1)
	if err != nil {
		return nil, err
	}
	parent, err := intCell(record, cols, "parent", 0)
	if err != nil {
		return nil, err
	}
	if id != 0 && parent == id {
		return nil, fmt.Errorf("task %d is its own parent", id)
	}
	kind, err := intCell(record, cols, "kind_task", 1)
	if err != nil {
		return nil, err
	}
	owner, err := intCell(record, cols, "owner_id", 0)
	if err != nil {
		return nil, err
	}
	sortOrder, err := intCell(record, cols, "sortorder", 0)
	if err != nil {
		return nil, err
	}
	progress, err := floatCell(record, cols, "progress", 0.0)
	if err != nil {
		return nil, err
	}

	t := &Task{
		ID:           int64(id),
		Text:         stringCell(record, cols, "text"),
		StartDate:    stringCell(record, cols, "start_date"),
		EndDate:      stringCell(record, cols, "end_date"),
		Duration:     duration,
		Progress:     progress,
		Parent:       int64(parent),
		Kind:         kind,
		Owner:        owner,
		SortOrder:    sortOrder,
		ToDo:         stringCell(record, cols, "ToDo"),
		ScheduleNote: stringCell(record, cols, "task_schedule"),
		Folder:       stringCell(record, cols, "folder"),
		URL:          stringCell(record, cols, "url_adress"),
		Mail:         stringCell(record, cols, "mail"),
		Memo:         stringCell(record, cols, "memo"),
		Hyperlink:    stringCell(record, cols, "hyperlink"),
		Color:        stringCell(record, cols, "color"),
		TextColor:    stringCell(record, cols, "textColor"),
		EditHistory:  stringCell(record, cols, "edit_date"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if t.StartDate == "" {
		t.StartDate = now
	}
	if t.EndDate == "" {
		t.EndDate = now
	}
	return t, nil
}

// stringCell returns the named cell, or "" when the column is absent or
// the record is short.
func stringCell(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// intCell parses the named cell as an integer, returning def for absent
// or empty cells.
func intCell(record []string, cols map[string]int, name string, def int) (int, error) {
	v := strings.TrimSpace(stringCell(record, cols, name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("column %q: %v is not an integer", name, v)
	}
	return n, nil
}

// floatCell parses the named cell as a float, returning def for absent or
// empty cells.
func floatCell(record []string, cols map[string]int, name string, def float64) (float64, error) {
	v := strings.TrimSpace(stringCell(record, cols, name))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %v is not a number", name, v)
	}
	return f, nil
}
