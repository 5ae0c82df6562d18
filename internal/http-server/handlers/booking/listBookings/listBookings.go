package listBookings

import (
	"context"
	"errors"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"shareIt/internal/lib/api/request"
	"shareIt/internal/lib/api/response"
	"shareIt/internal/lib/logger/sl"
	"shareIt/internal/models"
	"shareIt/internal/services/booking"
)

const (
	defaultState = "ALL"
	defaultFrom  = 0
	defaultSize  = 10
)

type Response struct {
	response.Response
	Bookings []models.Booking `json:"bookings"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingLister
type BookingLister interface {
	ListByBooker(ctx context.Context, state string, bookerID int64, from, size int) ([]models.Booking, error)
	ListByOwner(ctx context.Context, state string, ownerID int64, from, size int) ([]models.Booking, error)
}

// NewForBooker serves the caller's own bookings.
func NewForBooker(log *slog.Logger, lister BookingLister) http.HandlerFunc {
	return newHandler(log, "handlers.booking.listBookings.NewForBooker", lister.ListByBooker)
}

// NewForOwner serves bookings of items the caller owns.
func NewForOwner(log *slog.Logger, lister BookingLister) http.HandlerFunc {
	return newHandler(log, "handlers.booking.listBookings.NewForOwner", lister.ListByOwner)
}

type listFunc func(ctx context.Context, state string, userID int64, from, size int) ([]models.Booking, error)

func newHandler(log *slog.Logger, op string, list listFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(slog.String("op", op))

		userID, err := request.UserID(r)
		if err != nil {
			log.Error("failed to read user id", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		state := r.URL.Query().Get("state")
		if state == "" {
			state = defaultState
		}

		from, err := request.QueryInt(r, "from", defaultFrom)
		if err != nil {
			log.Error("invalid from parameter", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid from parameter"))
			return
		}

		size, err := request.QueryInt(r, "size", defaultSize)
		if err != nil {
			log.Error("invalid size parameter", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid size parameter"))
			return
		}

		log = log.With(
			slog.Int64("user_id", userID),
			slog.String("state", state),
			slog.Int("from", from),
			slog.Int("size", size),
		)

		bookings, err := list(r.Context(), state, userID, from, size)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrUnknownState), errors.Is(err, booking.ErrValidation):
				log.Warn("invalid listing request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.Is(err, booking.ErrNotFound):
				log.Warn("user not found", sl.Err(err))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				log.Error("failed to list bookings", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to list bookings"))
			}
			return
		}

		if bookings == nil {
			bookings = []models.Booking{}
		}

		log.Debug("bookings listed", slog.Int("count", len(bookings)))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Bookings: bookings,
		})
	}
}
