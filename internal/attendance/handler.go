package attendance

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fieldline-erp/fieldline-erp/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/attendance", h.List)
	r.Post("/attendance/clock-in", h.ClockIn)
	r.Post("/attendance/clock-out", h.ClockOut)
}

type clockInRequest struct {
	EmployeeID int64 `json:"employee_id"`
	StoreID    int64 `json:"store_id"`
}

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req clockInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}

	entry, err := h.service.ClockIn(r.Context(), req.EmployeeID, req.StoreID)
	if err != nil {
		h.logger.Error("clock in failed", slog.Any("error", err), slog.Int64("employee_id", req.EmployeeID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

type clockOutRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req clockOutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}

	entry, err := h.service.ClockOut(r.Context(), req.EmployeeID)
	if err != nil {
		h.logger.Error("clock out failed", slog.Any("error", err), slog.Int64("employee_id", req.EmployeeID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	if v := r.URL.Query().Get("employee_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.EmployeeID = &id
		}
	}
	if v := r.URL.Query().Get("store_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.StoreID = &id
		}
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}

	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list attendance failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}
