// Package booking implements the booking lifecycle: creation, owner approval,
// access-controlled retrieval and the state-filtered listings for bookers and
// item owners.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"shareIt/internal/lib/metrics"
	"shareIt/internal/models"
	"shareIt/internal/storage"
	"time"
)

type Storage interface {
	SaveBooking(ctx context.Context, b models.Booking, rejectOverlaps bool) (int64, error)
	Booking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, from, to models.Status) error
	BookingsByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time, page models.Page) ([]models.Booking, error)
	BookingsByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time, page models.Page) ([]models.Booking, error)
}

type UserProvider interface {
	User(ctx context.Context, id int64) (*models.User, error)
}

type ItemProvider interface {
	Item(ctx context.Context, id int64) (*models.Item, error)
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type Service struct {
	log            *slog.Logger
	bookings       Storage
	users          UserProvider
	items          ItemProvider
	clock          Clock
	metrics        *metrics.Metrics
	rejectOverlaps bool
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithOverlapCheck makes creation fail when the item already has a WAITING or
// APPROVED booking intersecting the requested window.
func WithOverlapCheck(enabled bool) Option {
	return func(s *Service) {
		s.rejectOverlaps = enabled
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(
	log *slog.Logger,
	bookings Storage,
	users UserProvider,
	items ItemProvider,
	opts ...Option,
) *Service {
	s := &Service{
		log:      log,
		bookings: bookings,
		users:    users,
		items:    items,
		clock:    ClockFunc(time.Now),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateBooking validates the draft and stores it as WAITING. Checks run in a
// fixed order and the first violation wins: window, item existence, item
// availability, booker existence, self-booking.
func (s *Service) CreateBooking(ctx context.Context, draft models.BookingDraft, bookerID int64) (_ *models.Booking, err error) {
	const op = "services.booking.CreateBooking"

	defer func() { s.metrics.RecordBookingOperation("create", outcome(err)) }()

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("item_id", draft.ItemID),
		slog.Int64("booker_id", bookerID),
	)

	if !models.IsValidWindow(draft.Start, draft.End) {
		return nil, invalid("booking end must be after its start")
	}

	item, err := s.item(ctx, op, draft.ItemID)
	if err != nil {
		return nil, err
	}

	if !item.Available {
		return nil, invalid("item %d is not available for booking", item.ID)
	}

	booker, err := s.user(ctx, op, bookerID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == booker.ID {
		return nil, forbidden("owner cannot book their own item")
	}

	b := models.Booking{
		Item:   *item,
		Booker: *booker,
		Status: models.StatusWaiting,
		Start:  draft.Start,
		End:    draft.End,
	}

	id, err := s.bookings.SaveBooking(ctx, b, s.rejectOverlaps)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrItemNotFound):
			return nil, notFound("item %d not found", item.ID)
		case errors.Is(err, storage.ErrUserNotFound):
			return nil, notFound("user %d not found", booker.ID)
		case errors.Is(err, storage.ErrItemUnavailable):
			return nil, invalid("item %d is not available for booking", item.ID)
		case errors.Is(err, storage.ErrBookingOverlap):
			return nil, invalid("item %d is already booked for this period", item.ID)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	b.ID = id

	log.Info("booking created", slog.Int64("booking_id", id))

	return &b, nil
}

// SetApproval lets the item owner move a WAITING booking to APPROVED or
// REJECTED. The status is written with a compare-and-set, so of two racing
// decisions exactly one wins and the other gets a validation error.
func (s *Service) SetApproval(ctx context.Context, bookingID int64, approved bool, userID int64) (_ *models.Booking, err error) {
	const op = "services.booking.SetApproval"

	defer func() { s.metrics.RecordBookingOperation("approve", outcome(err)) }()

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("booking_id", bookingID),
		slog.Int64("user_id", userID),
	)

	b, err := s.booking(ctx, op, bookingID)
	if err != nil {
		return nil, err
	}

	if _, err = s.user(ctx, op, userID); err != nil {
		return nil, err
	}

	to := models.Decision(approved)

	if !models.CanTransition(b.Status, to) {
		return nil, invalid("booking status can only be changed from %s", models.StatusWaiting)
	}

	if b.Item.OwnerID != userID {
		return nil, forbidden("only the item owner can change the booking status")
	}

	err = s.bookings.UpdateBookingStatus(ctx, bookingID, b.Status, to)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrStatusConflict):
			return nil, invalid("booking status can only be changed from %s", models.StatusWaiting)
		case errors.Is(err, storage.ErrBookingNotFound):
			return nil, notFound("booking %d not found", bookingID)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	b.Status = to

	log.Info("booking status changed", slog.String("status", string(to)))

	return b, nil
}

// GetBooking returns the booking to its booker or to the owner of the item.
func (s *Service) GetBooking(ctx context.Context, bookingID int64, userID int64) (_ *models.Booking, err error) {
	const op = "services.booking.GetBooking"

	defer func() { s.metrics.RecordBookingOperation("get", outcome(err)) }()

	b, err := s.booking(ctx, op, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Booker.ID != userID && b.Item.OwnerID != userID {
		return nil, forbidden("only the booker or the item owner can view the booking")
	}

	return b, nil
}

// ListByBooker returns bookings made by bookerID in the given state, newest
// start first. from is rounded down to a multiple of size (see models.NewPage).
func (s *Service) ListByBooker(ctx context.Context, stateToken string, bookerID int64, from, size int) (_ []models.Booking, err error) {
	const op = "services.booking.ListByBooker"

	defer func() { s.metrics.RecordBookingOperation("list_booker", outcome(err)) }()

	return s.list(ctx, op, stateToken, bookerID, from, size, s.bookings.BookingsByBooker)
}

// ListByOwner is ListByBooker for bookings of items owned by ownerID.
func (s *Service) ListByOwner(ctx context.Context, stateToken string, ownerID int64, from, size int) (_ []models.Booking, err error) {
	const op = "services.booking.ListByOwner"

	defer func() { s.metrics.RecordBookingOperation("list_owner", outcome(err)) }()

	return s.list(ctx, op, stateToken, ownerID, from, size, s.bookings.BookingsByOwner)
}

type listFunc func(ctx context.Context, userID int64, state models.State, now time.Time, page models.Page) ([]models.Booking, error)

func (s *Service) list(
	ctx context.Context,
	op string,
	stateToken string,
	userID int64,
	from, size int,
	fetch listFunc,
) ([]models.Booking, error) {
	state, err := models.ParseState(stateToken)
	if err != nil {
		return nil, unknownState(stateToken)
	}

	if from < 0 {
		return nil, invalid("from must not be negative")
	}
	if size <= 0 {
		return nil, invalid("size must be positive")
	}

	if _, err = s.user(ctx, op, userID); err != nil {
		return nil, err
	}

	bookings, err := fetch(ctx, userID, state, s.clock.Now(), models.NewPage(from, size))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (s *Service) user(ctx context.Context, op string, id int64) (*models.User, error) {
	u, err := s.users.User(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, notFound("user %d not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *Service) item(ctx context.Context, op string, id int64) (*models.Item, error) {
	it, err := s.items.Item(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, notFound("item %d not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return it, nil
}

func (s *Service) booking(ctx context.Context, op string, id int64) (*models.Booking, error) {
	b, err := s.bookings.Booking(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return nil, notFound("booking %d not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}
