// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package plan exposes the schedule engine over HTTP in the original
// Gantt frontend's wire format: tasks and precedence links under /api,
// plus CSV export/import of the full schedule.
package plan

import (
	"github.com/AleutianAI/AleutianPlan/services/plan/schedule"
)

// ServiceVersion is the plan service version.
const ServiceVersion = "0.1.0"

// Service bundles the schedule engine components over one store.
type Service struct {
	store schedule.Store
	clock schedule.Clock
	tree  *schedule.TaskTree
	links *schedule.LinkGraph
	codec *schedule.ScheduleCodec
}

// NewService wires the engine over the given store. A nil clock falls
// back to the system clock.
func NewService(store schedule.Store, clock schedule.Clock) *Service {
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	return &Service{
		store: store,
		clock: clock,
		tree:  schedule.NewTaskTree(store, clock),
		links: schedule.NewLinkGraph(store),
		codec: schedule.NewScheduleCodec(store, clock),
	}
}

// Tree returns the task hierarchy engine.
func (s *Service) Tree() *schedule.TaskTree { return s.tree }

// Links returns the precedence link engine.
func (s *Service) Links() *schedule.LinkGraph { return s.links }

// Codec returns the CSV exchange codec.
func (s *Service) Codec() *schedule.ScheduleCodec { return s.codec }
