package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"theatre-booking/internal/data/entity"
	"theatre-booking/internal/dto/request"
	"theatre-booking/internal/usecase"
	"theatre-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PlayHandler struct {
	service usecase.PlayService
	log     *zap.Logger
}

func NewPlayHandler(service usecase.PlayService, log *zap.Logger) *PlayHandler {
	return &PlayHandler{
		service: service,
		log:     log.With(zap.String("handler", "play")),
	}
}

// GetPlays handles GET /api/plays?title=&genres=&actors=
func (h *PlayHandler) GetPlays(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := entity.PlayFilter{Title: strings.TrimSpace(query.Get("title"))}

	var err error
	if filter.GenreIDs, err = utils.ParseUUIDList(query.Get("genres")); err != nil {
		utils.ResponseBadRequest(w, "Invalid genres filter", map[string]string{"genres": err.Error()})
		return
	}
	if filter.ActorIDs, err = utils.ParseUUIDList(query.Get("actors")); err != nil {
		utils.ResponseBadRequest(w, "Invalid actors filter", map[string]string{"actors": err.Error()})
		return
	}

	plays, err := h.service.GetPlays(r.Context(), paginationFromQuery(r), filter)
	if err != nil {
		handleServiceError(w, h.log, err, "get plays")
		return
	}

	utils.ResponseSuccess(w, "success", plays)
}

// GetPlayByID handles GET /api/plays/{id}
func (h *PlayHandler) GetPlayByID(w http.ResponseWriter, r *http.Request) {
	play, err := h.service.GetPlayByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get play")
		return
	}

	utils.ResponseSuccess(w, "success", play)
}

// CreatePlay handles POST /api/plays (admin only)
func (h *PlayHandler) CreatePlay(w http.ResponseWriter, r *http.Request) {
	var req request.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	play, err := h.service.CreatePlay(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create play")
		return
	}

	utils.ResponseCreated(w, "success", play)
}

// UpdatePlay handles PUT /api/plays/{id} (admin only)
func (h *PlayHandler) UpdatePlay(w http.ResponseWriter, r *http.Request) {
	var req request.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	play, err := h.service.UpdatePlay(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update play")
		return
	}

	utils.ResponseSuccess(w, "success", play)
}

// DeletePlay handles DELETE /api/plays/{id} (admin only)
func (h *PlayHandler) DeletePlay(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePlay(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete play")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
