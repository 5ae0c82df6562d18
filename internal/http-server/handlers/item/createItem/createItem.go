package createItem

import (
	"context"
	"errors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"shareIt/internal/lib/api/request"
	"shareIt/internal/lib/api/response"
	"shareIt/internal/lib/logger/sl"
	"shareIt/internal/models"
	"shareIt/internal/storage"
)

type Request struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Available   *bool  `json:"available" validate:"required"`
}

type Response struct {
	response.Response
	Item *models.Item `json:"item"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ItemSaver
type ItemSaver interface {
	SaveItem(ctx context.Context, ownerID int64, name, description string, available bool) (int64, error)
}

func New(log *slog.Logger, saver ItemSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.item.createItem.New"

		log := log.With(slog.String("op", op))

		ownerID, err := request.UserID(r)
		if err != nil {
			log.Error("failed to read user id", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		log = log.With(slog.Int64("owner_id", ownerID))

		var req Request

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		id, err := saver.SaveItem(r.Context(), ownerID, req.Name, req.Description, *req.Available)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				log.Warn("owner not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("owner not found"))
				return
			}

			log.Error("failed to add item", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to add item"))
			return
		}

		log.Info("item added", slog.Int64("id", id))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Item: &models.Item{
				ID:          id,
				Name:        req.Name,
				Description: req.Description,
				Available:   *req.Available,
				OwnerID:     ownerID,
			},
		})
	}
}
