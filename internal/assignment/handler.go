package assignment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fieldline-erp/fieldline-erp/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/assignments", h.List)
	r.Put("/assignments", h.Reconcile)
	r.Delete("/assignments/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	if v := r.URL.Query().Get("employee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "employee_id must be an integer")
			return
		}
		filter.EmployeeID = &id
	}
	if v := r.URL.Query().Get("store_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "store_id must be an integer")
			return
		}
		filter.StoreID = &id
	}
	filter.OnlyActiveUnits = r.URL.Query().Get("only_active") == "1"

	views, err := h.service.ListAssignments(r.Context(), filter)
	if err != nil {
		h.logger.Error("list assignments failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": views})
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var in ReconcileInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.Reconcile(r.Context(), in); err != nil {
		h.logger.Error("reconcile failed", slog.Any("error", err),
			slog.Int64("product_id", in.ProductID), slog.Int64("employee_id", in.EmployeeID))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "assignment id must be an integer")
		return
	}

	if err := h.service.DeleteAssignment(r.Context(), id); err != nil {
		h.logger.Error("delete assignment failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
