package adaptor

import (
	"encoding/json"
	"net/http"

	"theatre-booking/internal/dto/request"
	"theatre-booking/internal/usecase"
	"theatre-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ==================== THEATRE HALLS ====================

type TheatreHallHandler struct {
	service usecase.TheatreHallService
	log     *zap.Logger
}

func NewTheatreHallHandler(service usecase.TheatreHallService, log *zap.Logger) *TheatreHallHandler {
	return &TheatreHallHandler{
		service: service,
		log:     log.With(zap.String("handler", "theatre_hall")),
	}
}

// GetTheatreHalls handles GET /api/theatre-halls
func (h *TheatreHallHandler) GetTheatreHalls(w http.ResponseWriter, r *http.Request) {
	halls, err := h.service.GetTheatreHalls(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get theatre halls")
		return
	}

	utils.ResponseSuccess(w, "success", halls)
}

// GetTheatreHallByID handles GET /api/theatre-halls/{id}
func (h *TheatreHallHandler) GetTheatreHallByID(w http.ResponseWriter, r *http.Request) {
	hall, err := h.service.GetTheatreHallByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get theatre hall")
		return
	}

	utils.ResponseSuccess(w, "success", hall)
}

// CreateTheatreHall handles POST /api/theatre-halls (admin only)
func (h *TheatreHallHandler) CreateTheatreHall(w http.ResponseWriter, r *http.Request) {
	var req request.TheatreHallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	hall, err := h.service.CreateTheatreHall(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create theatre hall")
		return
	}

	utils.ResponseCreated(w, "success", hall)
}

// UpdateTheatreHall handles PUT /api/theatre-halls/{id} (admin only)
func (h *TheatreHallHandler) UpdateTheatreHall(w http.ResponseWriter, r *http.Request) {
	var req request.TheatreHallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	hall, err := h.service.UpdateTheatreHall(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update theatre hall")
		return
	}

	utils.ResponseSuccess(w, "success", hall)
}

// DeleteTheatreHall handles DELETE /api/theatre-halls/{id} (admin only)
func (h *TheatreHallHandler) DeleteTheatreHall(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTheatreHall(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete theatre hall")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// ==================== ACTORS ====================

type ActorHandler struct {
	service usecase.ActorService
	log     *zap.Logger
}

func NewActorHandler(service usecase.ActorService, log *zap.Logger) *ActorHandler {
	return &ActorHandler{
		service: service,
		log:     log.With(zap.String("handler", "actor")),
	}
}

// GetActors handles GET /api/actors
func (h *ActorHandler) GetActors(w http.ResponseWriter, r *http.Request) {
	actors, err := h.service.GetActors(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get actors")
		return
	}

	utils.ResponseSuccess(w, "success", actors)
}

// GetActorByID handles GET /api/actors/{id}
func (h *ActorHandler) GetActorByID(w http.ResponseWriter, r *http.Request) {
	actor, err := h.service.GetActorByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get actor")
		return
	}

	utils.ResponseSuccess(w, "success", actor)
}

// CreateActor handles POST /api/actors (admin only)
func (h *ActorHandler) CreateActor(w http.ResponseWriter, r *http.Request) {
	var req request.ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	actor, err := h.service.CreateActor(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create actor")
		return
	}

	utils.ResponseCreated(w, "success", actor)
}

// UpdateActor handles PUT /api/actors/{id} (admin only)
func (h *ActorHandler) UpdateActor(w http.ResponseWriter, r *http.Request) {
	var req request.ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	actor, err := h.service.UpdateActor(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update actor")
		return
	}

	utils.ResponseSuccess(w, "success", actor)
}

// DeleteActor handles DELETE /api/actors/{id} (admin only)
func (h *ActorHandler) DeleteActor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteActor(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete actor")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// ==================== GENRES ====================

type GenreHandler struct {
	service usecase.GenreService
	log     *zap.Logger
}

func NewGenreHandler(service usecase.GenreService, log *zap.Logger) *GenreHandler {
	return &GenreHandler{
		service: service,
		log:     log.With(zap.String("handler", "genre")),
	}
}

// GetGenres handles GET /api/genres
func (h *GenreHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.GetGenres(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get genres")
		return
	}

	utils.ResponseSuccess(w, "success", genres)
}

// GetGenreByID handles GET /api/genres/{id}
func (h *GenreHandler) GetGenreByID(w http.ResponseWriter, r *http.Request) {
	genre, err := h.service.GetGenreByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get genre")
		return
	}

	utils.ResponseSuccess(w, "success", genre)
}

// CreateGenre handles POST /api/genres (admin only)
func (h *GenreHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req request.GenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	genre, err := h.service.CreateGenre(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create genre")
		return
	}

	utils.ResponseCreated(w, "success", genre)
}

// UpdateGenre handles PUT /api/genres/{id} (admin only)
func (h *GenreHandler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	var req request.GenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	genre, err := h.service.UpdateGenre(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update genre")
		return
	}

	utils.ResponseSuccess(w, "success", genre)
}

// DeleteGenre handles DELETE /api/genres/{id} (admin only)
func (h *GenreHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGenre(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete genre")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
