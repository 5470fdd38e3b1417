package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"theatre-booking/internal/data/entity"
	"theatre-booking/internal/data/repository"
	"theatre-booking/internal/dto/request"
	"theatre-booking/internal/dto/response"
	"theatre-booking/pkg/cache"
	"theatre-booking/pkg/queue"
	"theatre-booking/pkg/ticketpdf"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, userID uuid.UUID, req *request.ReservationRequest) (*response.ReservationResponse, error)
	AddTicket(ctx context.Context, userID uuid.UUID, reservationID string, req *request.TicketRequest) (*response.TicketResponse, error)
	GetReservations(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
	GetReservationByID(ctx context.Context, userID uuid.UUID, reservationID string) (*response.ReservationResponse, error)
	DeleteReservation(ctx context.Context, userID uuid.UUID, reservationID string) error
	RenderTicketsPDF(ctx context.Context, userID uuid.UUID, reservationID string) ([]byte, error)

	GetTickets(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)
	DeleteTicket(ctx context.Context, userID uuid.UUID, ticketID string) error
}

type reservationService struct {
	repo      *repository.Repository
	engine    *BookingEngine
	cache     availabilityStore
	publisher queue.Publisher
	log       *zap.Logger
}

func NewReservationService(
	repo *repository.Repository,
	engine *BookingEngine,
	availability *cache.AvailabilityCache,
	publisher queue.Publisher,
	log *zap.Logger,
) ReservationService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &reservationService{
		repo:      repo,
		engine:    engine,
		cache:     availability,
		publisher: publisher,
		log:       log.With(zap.String("service", "reservation")),
	}
}

func toSeatRequest(t request.TicketRequest) (entity.SeatRequest, error) {
	performanceID, err := uuid.Parse(t.PerformanceID)
	if err != nil {
		return entity.SeatRequest{}, fmt.Errorf("invalid performance ID format %s: %w", t.PerformanceID, err)
	}
	return entity.SeatRequest{PerformanceID: performanceID, Row: t.Row, Seat: t.Seat}, nil
}

func (s *reservationService) CreateReservation(ctx context.Context, userID uuid.UUID, req *request.ReservationRequest) (*response.ReservationResponse, error) {
	seats := make([]entity.SeatRequest, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		seat, err := toSeatRequest(t)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	res, err := s.engine.Reserve(ctx, userID, seats)
	if err != nil {
		return nil, err
	}

	s.afterCommit(res)

	if err := s.attachPerformances(ctx, res.Tickets); err != nil {
		// committed already; answer without the summaries
		s.log.Warn("Failed to load performance summaries", zap.Error(err))
	}

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

func (s *reservationService) AddTicket(ctx context.Context, userID uuid.UUID, reservationID string, req *request.TicketRequest) (*response.TicketResponse, error) {
	resID, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID format %s: %w", reservationID, err)
	}

	seat, err := toSeatRequest(*req)
	if err != nil {
		return nil, err
	}

	ticket, err := s.engine.AddTicket(ctx, userID, resID, seat)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(context.WithoutCancel(ctx), ticket.PerformanceID)

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

// publishTimeout caps how long a committed reservation waits on the event publisher.
const publishTimeout = 2 * time.Second

// afterCommit runs the side effects of a committed reservation. Neither may fail the request.
func (s *reservationService) afterCommit(res *entity.Reservation) {
	ctx := context.Background()

	ids := make([]uuid.UUID, 0, len(res.Tickets))
	seen := map[uuid.UUID]bool{}
	events := make([]queue.TicketEvent, 0, len(res.Tickets))
	for _, t := range res.Tickets {
		if !seen[t.PerformanceID] {
			seen[t.PerformanceID] = true
			ids = append(ids, t.PerformanceID)
		}
		events = append(events, queue.TicketEvent{
			TicketID:      t.ID,
			PerformanceID: t.PerformanceID,
			Row:           t.Row,
			Seat:          t.Seat,
		})
	}
	s.cache.Invalidate(ctx, ids...)

	event := queue.ReservationCreatedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		CreatedAt:     res.CreatedAt,
		Tickets:       events,
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.PublishReservationCreated(pubCtx, event); err != nil {
		s.log.Warn("Failed to publish reservation event",
			zap.Error(err),
			zap.String("reservation_id", res.ID.String()),
		)
	}
}

// attachPerformances fills Ticket.Performance with one summary query.
func (s *reservationService) attachPerformances(ctx context.Context, tickets []entity.Ticket) error {
	ids := make([]uuid.UUID, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.PerformanceID)
	}

	summaries, err := s.repo.Performance.FindSummariesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range tickets {
		tickets[i].Performance = summaries[tickets[i].PerformanceID]
	}
	return nil
}

func (s *reservationService) GetReservations(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	list, err := s.repo.Reservation.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get reservations: %w", err)
	}

	total, err := s.repo.Reservation.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	if err := s.loadTickets(ctx, list); err != nil {
		return nil, err
	}

	out := make([]response.ReservationResponse, len(list))
	for i, r := range list {
		out[i] = response.ReservationToResponse(r)
	}

	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *reservationService) loadTickets(ctx context.Context, list []*entity.Reservation) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}

	byReservation, err := s.repo.Ticket.FindByReservationIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load reservation tickets: %w", err)
	}

	var all []entity.Ticket
	for _, r := range list {
		r.Tickets = byReservation[r.ID]
		all = append(all, r.Tickets...)
	}

	summaries, err := s.repo.Performance.FindSummariesByIDs(ctx, performanceIDs(all))
	if err != nil {
		return fmt.Errorf("load ticket performances: %w", err)
	}
	for _, r := range list {
		for i := range r.Tickets {
			r.Tickets[i].Performance = summaries[r.Tickets[i].PerformanceID]
		}
	}
	return nil
}

func performanceIDs(tickets []entity.Ticket) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(tickets))
	ids := make([]uuid.UUID, 0, len(tickets))
	for _, t := range tickets {
		if !seen[t.PerformanceID] {
			seen[t.PerformanceID] = true
			ids = append(ids, t.PerformanceID)
		}
	}
	return ids
}

func (s *reservationService) findOwn(ctx context.Context, userID uuid.UUID, reservationID string) (*entity.Reservation, error) {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID format %s: %w", reservationID, err)
	}

	res, err := s.repo.Reservation.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get reservation %s: %w", reservationID, err)
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}

	if err := s.loadTickets(ctx, []*entity.Reservation{res}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *reservationService) GetReservationByID(ctx context.Context, userID uuid.UUID, reservationID string) (*response.ReservationResponse, error) {
	res, err := s.findOwn(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

func (s *reservationService) DeleteReservation(ctx context.Context, userID uuid.UUID, reservationID string) error {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return fmt.Errorf("invalid reservation ID format %s: %w", reservationID, err)
	}

	touched, err := s.repo.Reservation.DeleteForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	s.cache.Invalidate(context.WithoutCancel(ctx), touched...)

	s.log.Info("Reservation deleted",
		zap.String("reservation_id", reservationID),
		zap.String("user_id", userID.String()),
	)
	return nil
}

func (s *reservationService) RenderTicketsPDF(ctx context.Context, userID uuid.UUID, reservationID string) ([]byte, error) {
	res, err := s.findOwn(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}

	doc := ticketpdf.Reservation{
		ID:        res.ID.String(),
		CreatedAt: res.CreatedAt,
	}
	if user, err := s.repo.User.FindByID(ctx, userID); err == nil && user != nil {
		doc.Holder = user.Username
	}
	for _, t := range res.Tickets {
		pt := ticketpdf.Ticket{ID: t.ID.String(), Row: t.Row, Seat: t.Seat}
		if t.Performance != nil {
			pt.PlayTitle = t.Performance.PlayTitle
			pt.HallName = t.Performance.TheatreHallName
			pt.ShowTime = t.Performance.ShowTime
		}
		doc.Tickets = append(doc.Tickets, pt)
	}

	pdf, err := ticketpdf.Render(doc)
	if errors.Is(err, ticketpdf.ErrNoTickets) {
		return nil, fmt.Errorf("reservation %s has no tickets to print: %w", reservationID, ErrReservationNotFound)
	}
	if err != nil {
		s.log.Error("Failed to render tickets PDF", zap.Error(err), zap.String("reservation_id", reservationID))
		return nil, fmt.Errorf("render tickets: %w", err)
	}
	return pdf, nil
}

func (s *reservationService) GetTickets(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	tickets, err := s.repo.Ticket.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get tickets: %w", err)
	}

	total, err := s.repo.Ticket.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}

	flat := make([]entity.Ticket, len(tickets))
	for i, t := range tickets {
		flat[i] = *t
	}
	if err := s.attachPerformances(ctx, flat); err != nil {
		return nil, fmt.Errorf("load ticket performances: %w", err)
	}

	out := make([]response.TicketResponse, len(flat))
	for i := range flat {
		out[i] = response.TicketToResponse(&flat[i])
	}

	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *reservationService) DeleteTicket(ctx context.Context, userID uuid.UUID, ticketID string) error {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return fmt.Errorf("invalid ticket ID format %s: %w", ticketID, err)
	}

	ticket, err := s.repo.Ticket.DeleteForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return fmt.Errorf("ticket %s not found", ticketID)
	}

	s.cache.Invalidate(context.WithoutCancel(ctx), ticket.PerformanceID)

	s.log.Info("Ticket deleted",
		zap.String("ticket_id", ticketID),
		zap.String("user_id", userID.String()),
	)
	return nil
}
