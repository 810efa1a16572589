// Package handler exposes the student registry over HTTP. Handlers stay
// thin: validation happens in models, orchestration in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"studentregistry/internal/platform/metrics"
	"studentregistry/internal/platform/middleware"
	"studentregistry/internal/student/models"
	dErrors "studentregistry/pkg/domain-errors"
	"studentregistry/pkg/platform/httputil"
)

// Service defines the operations the HTTP layer delegates to.
type Service interface {
	Upsert(ctx context.Context, input models.UpsertStudentInput) (*models.Student, error)
	Lookup(ctx context.Context, id string) (*models.Student, error)
	History(ctx context.Context, id string) ([]models.StudentSnapshot, error)
}

// Handler handles student-related endpoints.
type Handler struct {
	logger   *slog.Logger
	students Service
	metrics  *metrics.Metrics
}

func New(students Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		students: students,
		metrics:  metrics,
	}
}

// Register mounts the student routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	studentRouter := chi.NewRouter()
	studentRouter.Use(middleware.Recovery(h.logger))
	studentRouter.Use(middleware.RequestID)
	studentRouter.Use(middleware.Logger(h.logger))
	studentRouter.Use(middleware.Timeout(30 * time.Second))
	studentRouter.Use(middleware.ContentTypeJSON)
	studentRouter.Use(middleware.Latency(h.metrics))
	studentRouter.Post("/students", h.handleUpsert)
	studentRouter.Get("/students/{studentID}", h.handleLookup)
	studentRouter.Get("/students/{studentID}/history", h.handleHistory)

	r.Mount("/", studentRouter)
}

// handleUpsert creates the first version of a record or archives the current
// one and overwrites it.
func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.UpsertStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid upsert request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	input, err := req.Validate()
	if err != nil {
		h.logger.WarnContext(ctx, "upsert validation failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	student, err := h.students.Upsert(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "upsert failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	outcome := "updated"
	if student.Version == 1 {
		outcome = "created"
	}
	h.metrics.RecordUpsert(outcome)
	httputil.WriteJSON(w, http.StatusOK, student)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID := chi.URLParam(r, "studentID")

	student, err := h.students.Lookup(ctx, studentID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.metrics.RecordLookup("miss")
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"student_id", studentID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.RecordLookup("hit")
	httputil.WriteJSON(w, http.StatusOK, student)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID := chi.URLParam(r, "studentID")

	entries, err := h.students.History(ctx, studentID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "history read failed",
				"request_id", middleware.GetRequestID(ctx),
				"student_id", studentID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	if entries == nil {
		entries = []models.StudentSnapshot{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.HistoryResponse{
		StudentID: studentID,
		Entries:   entries,
	})
}
