package adaptor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"theatre-booking/internal/dto/request"
	"theatre-booking/internal/dto/response"
	"theatre-booking/internal/usecase"
	"theatre-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleServiceError maps a service error to a status code. Booking errors are
// matched by type, everything else by message.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	if seatErrs := usecase.SeatErrorsOf(err); len(seatErrs) > 0 {
		handleSeatErrors(w, log, err, seatErrs, operation)
		return
	}

	errMsg := err.Error()

	switch {
	case errors.Is(err, context.Canceled):
		log.Info(operation+" aborted by client", zap.Error(err))

	case errors.Is(err, usecase.ErrEmptyReservation):
		log.Warn(operation+" failed - empty reservation", zap.Error(err))
		utils.ResponseBadRequest(w, "Reservation rejected", map[string]string{
			"tickets": usecase.ErrorCode(err),
		})

	case errors.Is(err, usecase.ErrPersistenceConflict):
		log.Warn(operation+" failed - conflict at commit", zap.Error(err))
		utils.ResponseBadRequest(w, "Reservation rejected", map[string]string{
			"tickets": usecase.ErrorCode(err),
		})

	case errors.Is(err, usecase.ErrReservationNotFound),
		strings.Contains(errMsg, "not found"):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "already exists"):
		log.Warn(operation+" failed - already exists", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "invalid credentials"):
		log.Warn(operation+" failed - invalid credentials", zap.Error(err))
		utils.ResponseUnauthorized(w, "invalid credentials")

	case isInputError(errMsg):
		log.Warn(operation+" failed - invalid input", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// inputErrorPrefixes are the messages services raise for bad client input.
// Anything else mentioning "invalid" may come from the driver and stays a 500.
var inputErrorPrefixes = []string{
	"validation failed",
	"invalid hall size",
	"invalid theatre hall change",
	"invalid token format",
}

func isInputError(msg string) bool {
	for _, prefix := range inputErrorPrefixes {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	// "invalid <kind> ID format <value>: ..." from uuid parsing
	head, _, _ := strings.Cut(msg, ":")
	return strings.HasPrefix(head, "invalid ") && strings.Contains(head, " ID format ")
}

func handleSeatErrors(w http.ResponseWriter, log *zap.Logger, err error, seatErrs []*usecase.SeatError, operation string) {
	out := make([]response.SeatErrorResponse, len(seatErrs))
	for i, se := range seatErrs {
		cause := se.Err
		// a unique index refusal reads exactly like a seat found taken
		if errors.Is(cause, usecase.ErrPersistenceConflict) {
			cause = usecase.ErrSeatAlreadyTaken
		}
		out[i] = response.SeatErrorResponse{
			Index:         se.Index,
			PerformanceID: se.PerformanceID.String(),
			Row:           se.Row,
			Seat:          se.Seat,
			Field:         se.Field(),
			Code:          usecase.ErrorCode(cause),
			Message:       cause.Error(),
		}
	}
	payload := map[string]any{"tickets": out}

	switch {
	case errors.Is(err, usecase.ErrUnknownPerformance):
		log.Warn(operation+" failed - unknown performance", zap.Error(err))
		utils.ResponseJSON(w, http.StatusNotFound, false, "Performance not found", nil, payload)
	case errors.Is(err, usecase.ErrPersistenceConflict):
		log.Warn(operation+" failed - conflict at insert", zap.Error(err))
		utils.ResponseBadRequest(w, "Reservation rejected", payload)
	default:
		log.Info(operation+" rejected", zap.Int("seats", len(seatErrs)))
		utils.ResponseBadRequest(w, "Reservation rejected", payload)
	}
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}

// currentUser writes 401 and reports false when the request carries no user.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return userID, ok
}
