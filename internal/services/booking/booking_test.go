package booking

import (
	"context"
	"errors"
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shareIt/internal/lib/logger/handlers/slogdiscard"
	"shareIt/internal/lib/metrics"
	"shareIt/internal/models"
	"shareIt/internal/storage/memory"
	"sync"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	svc      *Service
	store    *memory.Storage
	owner    int64
	booker   int64
	stranger int64
	item     int64
}

func newEnv(t *testing.T, opts ...Option) env {
	t.Helper()

	ctx := context.Background()
	store := memory.New()

	owner, err := store.SaveUser(ctx, "owner", "owner@example.com")
	require.NoError(t, err)
	booker, err := store.SaveUser(ctx, "booker", "booker@example.com")
	require.NoError(t, err)
	stranger, err := store.SaveUser(ctx, "stranger", "stranger@example.com")
	require.NoError(t, err)
	item, err := store.SaveItem(ctx, owner, "drill", "cordless drill", true)
	require.NoError(t, err)

	opts = append([]Option{WithClock(ClockFunc(func() time.Time { return now }))}, opts...)
	svc := New(slogdiscard.NewDiscardLogger(), store, store, store, opts...)

	return env{
		svc:      svc,
		store:    store,
		owner:    owner,
		booker:   booker,
		stranger: stranger,
		item:     item,
	}
}

func (e env) create(t *testing.T, start, end time.Time) *models.Booking {
	t.Helper()

	b, err := e.svc.CreateBooking(context.Background(), models.BookingDraft{
		ItemID: e.item,
		Start:  start,
		End:    end,
	}, e.booker)
	require.NoError(t, err)

	return b
}

func ids(bs []models.Booking) []int64 {
	out := make([]int64, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func TestCreateBooking(t *testing.T) {
	e := newEnv(t)

	b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusWaiting, b.Status)
	assert.Equal(t, e.item, b.Item.ID)
	assert.Equal(t, e.owner, b.Item.OwnerID)
	assert.Equal(t, e.booker, b.Booker.ID)
	assert.Equal(t, "booker", b.Booker.Name)

	stored, err := e.store.Booking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Start, stored.Start)
	assert.Equal(t, models.StatusWaiting, stored.Status)
}

func TestCreateBooking_Errors(t *testing.T) {
	t.Parallel()

	start := now.Add(time.Hour)
	end := now.Add(2 * time.Hour)

	testCases := []struct {
		name    string
		item    func(e env) int64
		booker  func(e env) int64
		start   time.Time
		end     time.Time
		wantErr error
		wantMsg string
	}{
		{
			name:    "End before start",
			start:   end,
			end:     start,
			wantErr: ErrValidation,
			wantMsg: "booking end must be after its start",
		},
		{
			name:    "Zero length window",
			start:   start,
			end:     start,
			wantErr: ErrValidation,
		},
		{
			name:    "Unknown item",
			item:    func(env) int64 { return 404 },
			wantErr: ErrNotFound,
			wantMsg: "item 404 not found",
		},
		{
			name: "Unavailable item",
			item: func(e env) int64 {
				id, err := e.store.SaveItem(context.Background(), e.owner, "saw", "", false)
				if err != nil {
					panic(err)
				}
				return id
			},
			wantErr: ErrValidation,
		},
		{
			name:    "Unknown booker",
			booker:  func(env) int64 { return 404 },
			wantErr: ErrNotFound,
			wantMsg: "user 404 not found",
		},
		{
			name:    "Owner books own item",
			booker:  func(e env) int64 { return e.owner },
			wantErr: ErrForbidden,
		},
		{
			name:    "Window checked before item",
			item:    func(env) int64 { return 404 },
			start:   end,
			end:     start,
			wantErr: ErrValidation,
		},
		{
			name:    "Unknown item checked before unknown booker",
			item:    func(env) int64 { return 404 },
			booker:  func(env) int64 { return 404 },
			wantErr: ErrNotFound,
			wantMsg: "item 404 not found",
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := newEnv(t)

			itemID, bookerID := e.item, e.booker
			if tc.item != nil {
				itemID = tc.item(e)
			}
			if tc.booker != nil {
				bookerID = tc.booker(e)
			}

			s, en := start, end
			if !tc.start.IsZero() {
				s, en = tc.start, tc.end
			}

			_, err := e.svc.CreateBooking(context.Background(), models.BookingDraft{
				ItemID: itemID,
				Start:  s,
				End:    en,
			}, bookerID)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, err.Error())
			}
		})
	}
}

func TestCreateBooking_OwnerAlwaysForbidden(t *testing.T) {
	e := newEnv(t)

	for h := 1; h <= 24; h++ {
		_, err := e.svc.CreateBooking(context.Background(), models.BookingDraft{
			ItemID: e.item,
			Start:  now.Add(time.Duration(-h) * time.Hour),
			End:    now.Add(time.Duration(h) * time.Hour),
		}, e.owner)
		assert.ErrorIs(t, err, ErrForbidden)
	}
}

func TestCreateBooking_OverlapCheck(t *testing.T) {
	draft := func(e env) models.BookingDraft {
		return models.BookingDraft{ItemID: e.item, Start: now.Add(2 * time.Hour), End: now.Add(4 * time.Hour)}
	}

	t.Run("Disabled", func(t *testing.T) {
		e := newEnv(t)
		e.create(t, now.Add(time.Hour), now.Add(3*time.Hour))

		_, err := e.svc.CreateBooking(context.Background(), draft(e), e.booker)
		assert.NoError(t, err)
	})

	t.Run("Enabled", func(t *testing.T) {
		e := newEnv(t, WithOverlapCheck(true))
		e.create(t, now.Add(time.Hour), now.Add(3*time.Hour))

		_, err := e.svc.CreateBooking(context.Background(), draft(e), e.booker)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Rejected bookings do not block", func(t *testing.T) {
		e := newEnv(t, WithOverlapCheck(true))
		b := e.create(t, now.Add(time.Hour), now.Add(3*time.Hour))

		_, err := e.svc.SetApproval(context.Background(), b.ID, false, e.owner)
		require.NoError(t, err)

		_, err = e.svc.CreateBooking(context.Background(), draft(e), e.booker)
		assert.NoError(t, err)
	})
}

func TestSetApproval(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve then approve again", func(t *testing.T) {
		e := newEnv(t)
		b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

		approved, err := e.svc.SetApproval(ctx, b.ID, true, e.owner)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)

		_, err = e.svc.SetApproval(ctx, b.ID, true, e.owner)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = e.svc.SetApproval(ctx, b.ID, false, e.owner)
		assert.ErrorIs(t, err, ErrValidation)

		stored, err := e.store.Booking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, stored.Status)
	})

	t.Run("Reject", func(t *testing.T) {
		e := newEnv(t)
		b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

		rejected, err := e.svc.SetApproval(ctx, b.ID, false, e.owner)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, rejected.Status)
	})

	t.Run("Rejected is terminal", func(t *testing.T) {
		e := newEnv(t)
		b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

		_, err := e.svc.SetApproval(ctx, b.ID, false, e.owner)
		require.NoError(t, err)

		_, err = e.svc.SetApproval(ctx, b.ID, true, e.owner)
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "booking status can only be changed from WAITING", err.Error())

		stored, err := e.store.Booking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, stored.Status)
	})

	t.Run("Non-owner", func(t *testing.T) {
		e := newEnv(t)
		b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

		for _, userID := range []int64{e.booker, e.stranger} {
			_, err := e.svc.SetApproval(ctx, b.ID, true, userID)
			assert.ErrorIs(t, err, ErrForbidden)
		}

		stored, err := e.store.Booking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, stored.Status)
	})

	t.Run("Unknown booking", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.SetApproval(ctx, 404, true, e.owner)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Unknown user", func(t *testing.T) {
		e := newEnv(t)
		b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

		_, err := e.svc.SetApproval(ctx, b.ID, true, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Already decided beats non-owner", func(t *testing.T) {
		e := newEnv(t)
		b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

		_, err := e.svc.SetApproval(ctx, b.ID, true, e.owner)
		require.NoError(t, err)

		_, err = e.svc.SetApproval(ctx, b.ID, true, e.stranger)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestSetApproval_Concurrent(t *testing.T) {
	e := newEnv(t)
	b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(approved bool) {
			defer wg.Done()

			_, err := e.svc.SetApproval(context.Background(), b.ID, approved, e.owner)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
		}(i%2 == 0)
	}

	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestGetBooking(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))

	for _, userID := range []int64{e.booker, e.owner} {
		got, err := e.svc.GetBooking(ctx, b.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err := e.svc.GetBooking(ctx, b.ID, e.stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.svc.GetBooking(ctx, 404, e.booker)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByOwner_Future(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	future := e.create(t, now.Add(24*time.Hour), now.Add(48*time.Hour))
	past := e.create(t, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	_, err := e.svc.SetApproval(ctx, past.ID, true, e.owner)
	require.NoError(t, err)

	got, err := e.svc.ListByOwner(ctx, "FUTURE", e.owner, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{future.ID}, ids(got))
}

func TestList_States(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	past := e.create(t, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	current := e.create(t, now.Add(-time.Hour), now.Add(time.Hour))
	future := e.create(t, now.Add(24*time.Hour), now.Add(48*time.Hour))
	edge := e.create(t, now, now.Add(3*time.Hour))

	_, err := e.svc.SetApproval(ctx, past.ID, true, e.owner)
	require.NoError(t, err)
	_, err = e.svc.SetApproval(ctx, current.ID, false, e.owner)
	require.NoError(t, err)

	testCases := []struct {
		state string
		want  []int64
	}{
		{state: "ALL", want: []int64{future.ID, edge.ID, current.ID, past.ID}},
		{state: "all", want: []int64{future.ID, edge.ID, current.ID, past.ID}},
		{state: "CURRENT", want: []int64{edge.ID, current.ID}},
		{state: "PAST", want: []int64{past.ID}},
		{state: "FUTURE", want: []int64{future.ID}},
		{state: "WAITING", want: []int64{future.ID, edge.ID}},
		{state: "APPROVED", want: []int64{past.ID}},
		{state: "REJECTED", want: []int64{current.ID}},
	}

	for _, tc := range testCases {
		byBooker, err := e.svc.ListByBooker(ctx, tc.state, e.booker, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ids(byBooker), "booker %s", tc.state)

		byOwner, err := e.svc.ListByOwner(ctx, tc.state, e.owner, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ids(byOwner), "owner %s", tc.state)
	}
}

func TestList_CurrentExcludesPastAndFuture(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	for h := 1; h <= 5; h++ {
		e.create(t, now.Add(time.Duration(-h)*time.Hour), now.Add(time.Duration(h)*time.Hour))
	}

	current, err := e.svc.ListByBooker(ctx, "CURRENT", e.booker, 0, 100)
	require.NoError(t, err)
	require.Len(t, current, 5)

	for _, state := range []string{"PAST", "FUTURE"} {
		got, err := e.svc.ListByBooker(ctx, state, e.booker, 0, 100)
		require.NoError(t, err)
		assert.Empty(t, got, state)
	}
}

func TestList_WaitingSubsetOfAll(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	for i := 0; i < 6; i++ {
		b := e.create(t, now.Add(time.Duration(i)*time.Hour), now.Add(time.Duration(i+1)*time.Hour))
		if i%3 == 0 {
			_, err := e.svc.SetApproval(ctx, b.ID, i%2 == 0, e.owner)
			require.NoError(t, err)
		}
	}

	all, err := e.svc.ListByBooker(ctx, "ALL", e.booker, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 6)

	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Start.After(all[i-1].Start), "sorted by start descending")
	}

	waiting, err := e.svc.ListByBooker(ctx, "WAITING", e.booker, 0, 100)
	require.NoError(t, err)
	assert.Subset(t, ids(all), ids(waiting))
	assert.Len(t, waiting, 4)
}

func TestList_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		state   string
		userID  func(e env) int64
		from    int
		size    int
		wantErr error
		wantMsg string
	}{
		{
			name:    "Unknown state",
			state:   "bogus",
			size:    10,
			wantErr: ErrUnknownState,
			wantMsg: "Unknown state: bogus",
		},
		{
			name:    "Unknown state beats unknown user",
			state:   "bogus",
			userID:  func(env) int64 { return 404 },
			size:    10,
			wantErr: ErrUnknownState,
		},
		{
			name:    "Negative from",
			state:   "ALL",
			from:    -1,
			size:    10,
			wantErr: ErrValidation,
		},
		{
			name:    "Zero size",
			state:   "ALL",
			size:    0,
			wantErr: ErrValidation,
		},
		{
			name:    "Unknown user",
			state:   "ALL",
			userID:  func(env) int64 { return 404 },
			size:    10,
			wantErr: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := newEnv(t)
			userID := e.booker
			if tc.userID != nil {
				userID = tc.userID(e)
			}

			_, err := e.svc.ListByBooker(context.Background(), tc.state, userID, tc.from, tc.size)
			require.ErrorIs(t, err, tc.wantErr)

			_, err = e.svc.ListByOwner(context.Background(), tc.state, userID, tc.from, tc.size)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, err.Error())
			}
		})
	}
}

func TestList_Pagination(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	var created []int64
	for i := 0; i < 5; i++ {
		b := e.create(t, now.Add(time.Duration(i)*time.Hour), now.Add(time.Duration(i+1)*time.Hour))
		created = append(created, b.ID)
	}

	page, err := e.svc.ListByBooker(ctx, "ALL", e.booker, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{created[2], created[1]}, ids(page))
}

type failingStorage struct {
	*memory.Storage
}

func (failingStorage) BookingsByBooker(context.Context, int64, models.State, time.Time, models.Page) ([]models.Booking, error) {
	return nil, errors.New("connection reset")
}

func TestList_StorageError(t *testing.T) {
	e := newEnv(t)
	svc := New(slogdiscard.NewDiscardLogger(), failingStorage{e.store}, e.store, e.store)

	_, err := svc.ListByBooker(context.Background(), "ALL", e.booker, 0, 10)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "services.booking.ListByBooker")
}

func TestMetricsOutcome(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e := newEnv(t, WithMetrics(m))

	b := e.create(t, now.Add(time.Hour), now.Add(2*time.Hour))
	_, err := e.svc.SetApproval(context.Background(), b.ID, true, e.stranger)
	require.Error(t, err)
	_, err = e.svc.ListByBooker(context.Background(), "bogus", e.booker, 0, 10)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingOperations.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingOperations.WithLabelValues("approve", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingOperations.WithLabelValues("list_booker", "invalid")))
}

func TestOutcome(t *testing.T) {
	testCases := map[string]error{
		"ok":        nil,
		"not_found": notFound("booking %d not found", 1),
		"forbidden": forbidden("nope"),
		"invalid":   unknownState("x"),
		"error":     fmt.Errorf("op: %w", errors.New("boom")),
	}

	for want, err := range testCases {
		assert.Equal(t, want, outcome(err))
	}
}
