package booking

import (
	"context"
	"errors"
	"strings"

	"mydienst/internal/domain"
	"mydienst/internal/events"
	"mydienst/internal/metrics"
	"mydienst/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrMissingFields is returned when a create request lacks a slot
	// id or a required contact field.
	ErrMissingFields = errors.New("missing required fields")

	// ErrReasonRequired is returned when a cancellation carries a
	// blank reason.
	ErrReasonRequired = errors.New("cancellation reason is required")
)

// CreateRequest carries the public booking form.
type CreateRequest struct {
	SlotID     int64
	FullName   string
	Email      string
	Phone      string
	Address    string
	PostalCode string
	City       string
	Units      *int64
	Note       string
}

func (r CreateRequest) validate() error {
	required := []string{r.FullName, r.Email, r.Phone, r.Address, r.PostalCode, r.City}
	if r.SlotID == 0 {
		return ErrMissingFields
	}
	for _, f := range required {
		if strings.TrimSpace(f) == "" {
			return ErrMissingFields
		}
	}
	return nil
}

// Service enforces the slot/booking state machine. Every transition is
// one database transaction; notification events are published after
// commit and never influence the outcome.
type Service struct {
	repo   domain.Repository
	bus    domain.EventPublisher
	logger zerolog.Logger
}

func NewService(repo domain.Repository, bus domain.EventPublisher, logger *zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger.With().Str("component", "booking").Logger(),
	}
}

// Create reserves a free slot. Of two concurrent calls on the same
// slot exactly one succeeds; the other gets database.ErrSlotTaken.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	b := &models.Booking{
		SlotID:     req.SlotID,
		FullName:   strings.TrimSpace(req.FullName),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Address:    strings.TrimSpace(req.Address),
		PostalCode: strings.TrimSpace(req.PostalCode),
		City:       strings.TrimSpace(req.City),
		Units:      req.Units,
		Note:       strings.TrimSpace(req.Note),
	}

	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	metrics.IncBooking("created")
	s.logger.Info().Int64("booking_id", b.ID).Int64("slot_id", b.SlotID).Msg("booking created")

	s.publishBooking(ctx, events.EventBookingCreated, b.ID)
	return b, nil
}

// Complete stamps a booking as done. Re-completing is a no-op; the
// original actor and timestamp are preserved.
func (s *Service) Complete(ctx context.Context, id int64, actor string) error {
	if err := s.repo.CompleteBooking(ctx, id, actor); err != nil {
		return err
	}

	metrics.IncBooking("completed")
	s.logger.Info().Int64("booking_id", id).Str("actor", actor).Msg("booking completed")
	return nil
}

// Cancel archives, deletes and frees in one transaction, then
// publishes the cancellation event.
func (s *Service) Cancel(ctx context.Context, id int64, reason, actor string, actorID int64) (*models.CanceledBooking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	record, err := s.repo.CancelBooking(ctx, id, strings.TrimSpace(reason), actor, actorID)
	if err != nil {
		return nil, err
	}

	metrics.IncBooking("canceled")
	s.logger.Info().Int64("booking_id", id).Str("actor", actor).Msg("booking canceled")

	if err := s.bus.PublishJSON(events.EventBookingCanceled, events.PayloadFromCancellation(record)); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", id).Msg("publish cancellation event")
	}
	return record, nil
}

func (s *Service) publishBooking(ctx context.Context, eventType string, id int64) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", id).Msg("load booking for event")
		return
	}
	if err := s.bus.PublishJSON(eventType, events.PayloadFromBooking(b)); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", id).Msg("publish booking event")
	}
}
