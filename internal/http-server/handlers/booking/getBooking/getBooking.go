package getBooking

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"shareIt/internal/lib/api/request"
	"shareIt/internal/lib/api/response"
	"shareIt/internal/lib/logger/sl"
	"shareIt/internal/models"
	"shareIt/internal/services/booking"
	"strconv"
)

type Response struct {
	response.Response
	Booking *models.Booking `json:"booking"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingGetter
type BookingGetter interface {
	GetBooking(ctx context.Context, bookingID int64, userID int64) (*models.Booking, error)
}

func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.getBooking.New"

		log := log.With(slog.String("op", op))

		userID, err := request.UserID(r)
		if err != nil {
			log.Error("failed to read user id", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		bookingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("invalid booking id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid booking id format"))
			return
		}

		log = log.With(slog.Int64("user_id", userID), slog.Int64("booking_id", bookingID))

		b, err := getter.GetBooking(r.Context(), bookingID, userID)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrNotFound):
				log.Warn("booking not found", sl.Err(err))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(err.Error()))
				return
			case errors.Is(err, booking.ErrForbidden):
				log.Warn("booking not visible", sl.Err(err))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(fmt.Sprintf("booking %d not found", bookingID)))
				return
			}

			log.Error("failed to get booking", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get booking"))
			return
		}

		render.JSON(w, r, Response{
			Response: response.OK(),
			Booking:  b,
		})
	}
}
