// Package memory is a process-local storage used for local runs and tests.
// It honours the same contract as the postgres storage.
package memory

import (
	"context"
	"fmt"
	"shareIt/internal/models"
	"shareIt/internal/storage"
	"sort"
	"strings"
	"sync"
	"time"
)

type Storage struct {
	mu       sync.RWMutex
	users    map[int64]models.User
	items    map[int64]models.Item
	bookings map[int64]models.Booking

	lastUserID    int64
	lastItemID    int64
	lastBookingID int64
}

func New() *Storage {
	return &Storage{
		users:    make(map[int64]models.User),
		items:    make(map[int64]models.Item),
		bookings: make(map[int64]models.Booking),
	}
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) SaveUser(_ context.Context, name, email string) (int64, error) {
	const op = "storage.memory.SaveUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
	}

	s.lastUserID++
	s.users[s.lastUserID] = models.User{ID: s.lastUserID, Name: name, Email: email}

	return s.lastUserID, nil
}

func (s *Storage) SaveItem(_ context.Context, ownerID int64, name, description string, available bool) (int64, error) {
	const op = "storage.memory.SaveItem"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[ownerID]; !ok {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	s.lastItemID++
	s.items[s.lastItemID] = models.Item{
		ID:          s.lastItemID,
		Name:        name,
		Description: description,
		Available:   available,
		OwnerID:     ownerID,
	}

	return s.lastItemID, nil
}

func (s *Storage) User(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	return &u, nil
}

func (s *Storage) Item(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, storage.ErrItemNotFound
	}

	return &it, nil
}

// SaveBooking stores b as WAITING. The item is re-checked under the write lock.
func (s *Storage) SaveBooking(_ context.Context, b models.Booking, rejectOverlaps bool) (int64, error) {
	const op = "storage.memory.SaveBooking"

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[b.Item.ID]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
	}
	if !item.Available {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrItemUnavailable)
	}
	if _, ok := s.users[b.Booker.ID]; !ok {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	if rejectOverlaps {
		for _, other := range s.bookings {
			if other.Item.ID != b.Item.ID || other.Status == models.StatusRejected {
				continue
			}
			if models.Overlaps(b.Start, b.End, other.Start, other.End) {
				return 0, fmt.Errorf("%s: %w", op, storage.ErrBookingOverlap)
			}
		}
	}

	s.lastBookingID++
	b.ID = s.lastBookingID
	b.Status = models.StatusWaiting
	b.Item = item
	b.Booker = s.users[b.Booker.ID]
	s.bookings[b.ID] = b

	return b.ID, nil
}

func (s *Storage) Booking(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}

	return &b, nil
}

// UpdateBookingStatus moves the booking to `to` only if it is still in `from`.
func (s *Storage) UpdateBookingStatus(_ context.Context, id int64, from, to models.Status) error {
	const op = "storage.memory.UpdateBookingStatus"

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	}
	if b.Status != from {
		return fmt.Errorf("%s: %w", op, storage.ErrStatusConflict)
	}

	b.Status = to
	s.bookings[id] = b

	return nil
}

func (s *Storage) BookingsByBooker(
	_ context.Context,
	bookerID int64,
	state models.State,
	now time.Time,
	page models.Page,
) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.Booker.ID == bookerID }, state, now, page)
}

func (s *Storage) BookingsByOwner(
	_ context.Context,
	ownerID int64,
	state models.State,
	now time.Time,
	page models.Page,
) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.Item.OwnerID == ownerID }, state, now, page)
}

func (s *Storage) list(
	subject func(models.Booking) bool,
	state models.State,
	now time.Time,
	page models.Page,
) ([]models.Booking, error) {
	const op = "storage.memory.list"

	match, err := stateMatcher(state, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	found := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if subject(b) && match(b) {
			found = append(found, b)
		}
	}
	s.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		if found[i].Start.Equal(found[j].Start) {
			return found[i].ID > found[j].ID
		}
		return found[i].Start.After(found[j].Start)
	})

	if page.Offset >= len(found) {
		return []models.Booking{}, nil
	}

	end := page.Offset + page.Limit
	if end > len(found) {
		end = len(found)
	}

	return found[page.Offset:end], nil
}

func stateMatcher(state models.State, now time.Time) (func(models.Booking) bool, error) {
	switch state {
	case models.StateAll:
		return func(models.Booking) bool { return true }, nil
	case models.StateCurrent:
		return func(b models.Booking) bool { return !b.Start.After(now) && !b.End.Before(now) }, nil
	case models.StatePast:
		return func(b models.Booking) bool { return b.End.Before(now) }, nil
	case models.StateFuture:
		return func(b models.Booking) bool { return b.Start.After(now) }, nil
	case models.StateWaiting, models.StateApproved, models.StateRejected:
		status, _ := state.Status()
		return func(b models.Booking) bool { return b.Status == status }, nil
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownState, state)
	}
}
