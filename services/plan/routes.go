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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all plan routes with the router group
// (typically /api). Paths match the original Gantt frontend.
//
// Task Endpoints:
//
//	GET    /api/tasks           - Full schedule (tasks + links)
//	POST   /api/tasks           - Create a task
//	POST   /api/tasks/reorder   - Apply a reorder/reparent batch
//	GET    /api/tasks/:id       - Get one task
//	PUT    /api/tasks/:id       - Partial update
//	DELETE /api/tasks/:id       - Cascade delete
//	POST   /api/tasks/:id/clone - Clone a task
//
// Link Endpoints:
//
//	GET    /api/links           - List links
//	POST   /api/links           - Create a link
//	DELETE /api/links/:id       - Delete a link
//
// Exchange Endpoints:
//
//	GET  /api/export/csv - Export the task set as CSV
//	POST /api/import/csv - Destructive import-replace from CSV
//
// Health Endpoints:
//
//	GET /api/plan/health - Liveness and version
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	tasks := rg.Group("/tasks")
	{
		tasks.GET("", h.HandleGetSchedule)
		tasks.POST("", h.HandleCreateTask)
		tasks.POST("/reorder", h.HandleReorderTasks)
		tasks.GET("/:id", h.HandleGetTask)
		tasks.PUT("/:id", h.HandleUpdateTask)
		tasks.DELETE("/:id", h.HandleDeleteTask)
		tasks.POST("/:id/clone", h.HandleCloneTask)
	}

	links := rg.Group("/links")
	{
		links.GET("", h.HandleListLinks)
		links.POST("", h.HandleCreateLink)
		links.DELETE("/:id", h.HandleDeleteLink)
	}

	rg.GET("/export/csv", h.HandleExportCSV)
	rg.POST("/import/csv", h.HandleImportCSV)

	rg.GET("/plan/health", h.HandleHealth)
}
