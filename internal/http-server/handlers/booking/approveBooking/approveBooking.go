package approveBooking

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

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingApprover
type BookingApprover interface {
	SetApproval(ctx context.Context, bookingID int64, approved bool, userID int64) (*models.Booking, error)
}

func New(log *slog.Logger, approver BookingApprover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.approveBooking.New"

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

		rawApproved := r.URL.Query().Get("approved")
		if rawApproved == "" {
			log.Error("approved parameter is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("approved parameter is required"))
			return
		}

		approved, err := strconv.ParseBool(rawApproved)
		if err != nil {
			log.Error("invalid approved parameter", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid approved parameter"))
			return
		}

		log = log.With(
			slog.Int64("user_id", userID),
			slog.Int64("booking_id", bookingID),
			slog.Bool("approved", approved),
		)

		b, err := approver.SetApproval(r.Context(), bookingID, approved, userID)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrNotFound):
				log.Warn("approval refused", sl.Err(err))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(err.Error()))
			case errors.Is(err, booking.ErrForbidden):
				log.Warn("approval refused", sl.Err(err))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(fmt.Sprintf("booking %d not found", bookingID)))
			case errors.Is(err, booking.ErrValidation):
				log.Warn("approval refused", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				log.Error("failed to change booking status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to change booking status"))
			}
			return
		}

		log.Info("booking status changed", slog.String("status", string(b.Status)))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Booking:  b,
		})
	}
}
