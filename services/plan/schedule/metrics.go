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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_task_operations_total",
		Help: "Schedule engine operations by type and status",
	}, []string{"operation", "status"})

	linksPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plan_links_purged_total",
		Help: "Links removed by cascade cleanup",
	})

	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_import_rows_total",
		Help: "CSV import rows by result",
	}, []string{"result"})
)

// observeTaskOp records one engine operation outcome.
func observeTaskOp(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	taskOperationsTotal.WithLabelValues(operation, status).Inc()
}
