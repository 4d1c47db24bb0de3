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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianPlan/services/plan/schedule"
)

// Handlers contains the HTTP handlers for the plan service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleGetSchedule handles GET /api/tasks.
//
// Returns the full schedule: every task ordered by (parent, sortorder)
// plus every link, as one combined payload.
func (h *Handlers) HandleGetSchedule(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetSchedule")

	tasks, err := h.svc.Tree().List(c.Request.Context())
	if err != nil {
		logger.Error("List tasks failed", "error", err)
		respondError(c, err)
		return
	}
	links, err := h.svc.Links().List(c.Request.Context())
	if err != nil {
		logger.Error("List links failed", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GanttData{Tasks: tasks, Links: links})
}

// HandleGetTask handles GET /api/tasks/:id.
func (h *Handlers) HandleGetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.svc.Tree().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// HandleCreateTask handles POST /api/tasks.
func (h *Handlers) HandleCreateTask(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateTask")

	var req TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		respondBindError(c, err)
		return
	}

	task, err := h.svc.Tree().Create(c.Request.Context(), req.draft())
	if err != nil {
		logger.Error("Create task failed", "error", err)
		respondError(c, err)
		return
	}
	logger.Info("Task created", "task_id", task.ID, "parent", task.Parent, "sortorder", task.SortOrder)
	c.JSON(http.StatusOK, task)
}

// HandleUpdateTask handles PUT /api/tasks/:id. Only fields present in the
// body are applied; duration is recomputed when either date moves.
func (h *Handlers) HandleUpdateTask(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleUpdateTask")

	id, ok := pathID(c)
	if !ok {
		return
	}
	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		respondBindError(c, err)
		return
	}

	task, err := h.svc.Tree().Update(c.Request.Context(), id, req.patch())
	if err != nil {
		logger.Error("Update task failed", "task_id", id, "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// HandleDeleteTask handles DELETE /api/tasks/:id.
//
// Cascade-deletes the task, every transitive descendant, and every link
// touching a removed task, returning the removed identifiers so the
// caller can update any cached view.
func (h *Handlers) HandleDeleteTask(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteTask")

	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.svc.Tree().Delete(c.Request.Context(), id)
	if err != nil {
		logger.Error("Delete task failed", "task_id", id, "error", err)
		respondError(c, err)
		return
	}
	logger.Info("Task deleted", "task_id", id, "descendants", len(result.DeletedDescendants))
	c.JSON(http.StatusOK, result)
}

// HandleCloneTask handles POST /api/tasks/:id/clone.
func (h *Handlers) HandleCloneTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.svc.Tree().Clone(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// HandleReorderTasks handles POST /api/tasks/reorder. The batch commits
// atomically: on any failure no item is applied.
func (h *Handlers) HandleReorderTasks(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleReorderTasks")

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		respondBindError(c, err)
		return
	}

	updated, err := h.svc.Tree().Reorder(c.Request.Context(), req.Items)
	if err != nil {
		logger.Error("Reorder failed", "items", len(req.Items), "error", err)
		respondError(c, err)
		return
	}
	logger.Info("Tasks reordered", "updated", updated)
	c.JSON(http.StatusOK, ReorderResponse{Updated: updated})
}

// HandleListLinks handles GET /api/links.
func (h *Handlers) HandleListLinks(c *gin.Context) {
	links, err := h.svc.Links().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// HandleCreateLink handles POST /api/links.
func (h *Handlers) HandleCreateLink(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateLink")

	var req LinkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		respondBindError(c, err)
		return
	}

	link, err := h.svc.Links().Create(c.Request.Context(), req.Source, req.Target, req.Type)
	if err != nil {
		logger.Error("Create link failed", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// HandleDeleteLink handles DELETE /api/links/:id.
func (h *Handlers) HandleDeleteLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Links().Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link deleted"})
}

// HandleExportCSV handles GET /api/export/csv.
//
// Streams the task set as a BOM-prefixed CSV attachment with a
// timestamped filename.
func (h *Handlers) HandleExportCSV(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleExportCSV")

	filename := fmt.Sprintf("gantt_tasks_%s.csv", h.svc.clock.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.svc.Codec().Export(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; log and abort the stream.
		logger.Error("Export failed", "error", err)
		c.Abort()
		return
	}
	logger.Info("Schedule exported", "filename", filename)
}

// HandleImportCSV handles POST /api/import/csv.
//
// Replaces the entire schedule with the uploaded file. Malformed rows are
// skipped and reported per row; the replacement itself is one
// all-or-nothing transaction.
func (h *Handlers) HandleImportCSV(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleImportCSV")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Missing upload", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "file field is required",
			Code:  "MISSING_FILE",
		})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		logger.Error("Open upload failed", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "could not read uploaded file",
			Code:  "UNREADABLE_FILE",
		})
		return
	}
	defer f.Close()

	report, err := h.svc.Codec().Import(c.Request.Context(), f)
	if err != nil {
		logger.Error("Import failed", "error", err)
		respondError(c, err)
		return
	}
	logger.Info("Schedule imported",
		"imported", report.ImportedCount,
		"skipped", report.SkippedCount)
	c.JSON(http.StatusOK, report)
}

// HandleHealth handles GET /api/plan/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: ServiceVersion})
}

// pathID parses the :id path parameter, responding 400 on garbage.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid identifier %q", c.Param("id")),
			Code:  "INVALID_ID",
		})
		return 0, false
	}
	return id, true
}

// respondError maps engine sentinel errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	errCode := "INTERNAL"

	switch {
	case errors.Is(err, schedule.ErrTaskNotFound):
		statusCode = http.StatusNotFound
		errCode = "TASK_NOT_FOUND"
	case errors.Is(err, schedule.ErrLinkNotFound):
		statusCode = http.StatusNotFound
		errCode = "LINK_NOT_FOUND"
	case errors.Is(err, schedule.ErrParentNotFound):
		statusCode = http.StatusBadRequest
		errCode = "PARENT_NOT_FOUND"
	case errors.Is(err, schedule.ErrParentCycle):
		statusCode = http.StatusBadRequest
		errCode = "PARENT_CYCLE"
	case errors.Is(err, schedule.ErrSelfLink):
		statusCode = http.StatusBadRequest
		errCode = "SELF_LINK"
	case errors.Is(err, schedule.ErrEmptyText),
		errors.Is(err, schedule.ErrMissingDates),
		errors.Is(err, schedule.ErrInvalidProgress):
		statusCode = http.StatusBadRequest
		errCode = "VALIDATION_FAILED"
	}

	c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
}

// respondBindError turns gin binding failures into readable 400s,
// unwrapping field-level validator errors when present.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: strings.Join(fields, "; "),
			Code:  "INVALID_REQUEST",
		})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "Invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
