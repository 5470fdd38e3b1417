package adaptor

import (
	"encoding/json"
	"net/http"
	"time"

	"theatre-booking/internal/data/entity"
	"theatre-booking/internal/dto/request"
	"theatre-booking/internal/usecase"
	"theatre-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PerformanceHandler struct {
	service usecase.PerformanceService
	log     *zap.Logger
}

func NewPerformanceHandler(service usecase.PerformanceService, log *zap.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		service: service,
		log:     log.With(zap.String("handler", "performance")),
	}
}

// performanceFilter reads ?play=<uuid>&date=YYYY-MM-DD.
func performanceFilter(r *http.Request) (entity.PerformanceFilter, map[string]string) {
	query := r.URL.Query()
	var filter entity.PerformanceFilter
	errs := map[string]string{}

	if raw := query.Get("play"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs["play"] = "must be a valid UUID"
		} else {
			filter.PlayID = &id
		}
	}
	if raw := query.Get("date"); raw != "" {
		if _, err := time.Parse(time.DateOnly, raw); err != nil {
			errs["date"] = "must be a date in YYYY-MM-DD format"
		} else {
			filter.Date = &raw
		}
	}

	return filter, errs
}

// GetPerformances handles GET /api/performances
func (h *PerformanceHandler) GetPerformances(w http.ResponseWriter, r *http.Request) {
	filter, errs := performanceFilter(r)
	if len(errs) > 0 {
		utils.ResponseBadRequest(w, "Invalid filter", errs)
		return
	}

	performances, err := h.service.GetPerformances(r.Context(), paginationFromQuery(r), filter)
	if err != nil {
		handleServiceError(w, h.log, err, "get performances")
		return
	}

	utils.ResponseSuccess(w, "success", performances)
}

// GetPerformanceByID handles GET /api/performances/{id}
func (h *PerformanceHandler) GetPerformanceByID(w http.ResponseWriter, r *http.Request) {
	performance, err := h.service.GetPerformanceByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get performance")
		return
	}

	utils.ResponseSuccess(w, "success", performance)
}

// CreatePerformance handles POST /api/performances (admin only)
func (h *PerformanceHandler) CreatePerformance(w http.ResponseWriter, r *http.Request) {
	var req request.PerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	performance, err := h.service.CreatePerformance(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create performance")
		return
	}

	utils.ResponseCreated(w, "success", performance)
}

// UpdatePerformance handles PUT /api/performances/{id} (admin only)
func (h *PerformanceHandler) UpdatePerformance(w http.ResponseWriter, r *http.Request) {
	var req request.PerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	performance, err := h.service.UpdatePerformance(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update performance")
		return
	}

	utils.ResponseSuccess(w, "success", performance)
}

// DeletePerformance handles DELETE /api/performances/{id} (admin only)
func (h *PerformanceHandler) DeletePerformance(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePerformance(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete performance")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
