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
	"context"

	"github.com/AleutianAI/AleutianPlan/services/plan/schedule"
)

// SeedSample replaces the schedule with a small demo project tree plus a
// few precedence links, dated relative to the clock's today. Intended for
// first-run exploration; it is as destructive as a CSV import.
func SeedSample(ctx context.Context, store schedule.Store, clock schedule.Clock) error {
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	now := clock.Now()
	today := now.Format(schedule.TimestampLayout)
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(schedule.DateLayout) + " 00:00:00"
	}

	tasks := []*schedule.Task{
		{
			ID: 1, Text: "Website relaunch", StartDate: day(-10), EndDate: day(30),
			Duration: 40, Parent: 0, Kind: schedule.KindProject,
			Owner: schedule.OwnerSelf, SortOrder: 0,
			CreatedAt: today, UpdatedAt: today,
		},
		{
			ID: 2, Text: "Content migration", StartDate: day(-5), EndDate: day(25),
			Duration: 30, Parent: 1, Kind: schedule.KindProject,
			Owner: schedule.OwnerSelf, SortOrder: 0,
			CreatedAt: today, UpdatedAt: today,
		},
		{
			ID: 3, Text: "Inventory existing pages", StartDate: day(0), EndDate: day(7),
			Duration: 7, Parent: 2, Kind: schedule.KindTask,
			Owner: schedule.OwnerSelf, SortOrder: 0,
			CreatedAt: today, UpdatedAt: today,
		},
		{
			ID: 4, Text: "Draft new copy", StartDate: day(2), EndDate: day(9),
			Duration: 7, Parent: 2, Kind: schedule.KindTask,
			Owner: schedule.OwnerWaiting, SortOrder: 1,
			CreatedAt: today, UpdatedAt: today,
		},
		{
			ID: 5, Text: "Legal review", StartDate: day(9), EndDate: day(12),
			Duration: 3, Parent: 1, Kind: schedule.KindTask,
			Owner: schedule.OwnerAwaitingSignature, SortOrder: 1,
			CreatedAt: today, UpdatedAt: today,
		},
		{
			ID: 6, Text: "Launch", StartDate: day(29), EndDate: day(30),
			Duration: 1, Parent: 0, Kind: schedule.KindTask,
			Owner: schedule.OwnerOther, SortOrder: 1,
			CreatedAt: today, UpdatedAt: today,
		},
	}
	links := []*schedule.Link{
		{ID: 1, Source: 3, Target: 4, Type: schedule.FinishToStart},
		{ID: 2, Source: 4, Target: 5, Type: schedule.FinishToStart},
		{ID: 3, Source: 2, Target: 6, Type: schedule.FinishToFinish},
	}

	return store.Update(ctx, func(tx schedule.Tx) error {
		if err := tx.DeleteAllLinks(); err != nil {
			return err
		}
		if err := tx.DeleteAllTasks(); err != nil {
			return err
		}
		for _, t := range tasks {
			if err := tx.InsertTask(t); err != nil {
				return err
			}
		}
		for _, l := range links {
			if err := tx.InsertLink(l); err != nil {
				return err
			}
		}
		return nil
	})
}
