package createUser

import (
	"context"
	"errors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"shareIt/internal/lib/api/response"
	"shareIt/internal/lib/logger/sl"
	"shareIt/internal/models"
	"shareIt/internal/storage"
)

type Request struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	response.Response
	User *models.User `json:"user"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=UserSaver
type UserSaver interface {
	SaveUser(ctx context.Context, name, email string) (int64, error)
}

func New(log *slog.Logger, saver UserSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.createUser.New"

		log := log.With(slog.String("op", op))

		var req Request

		err := render.DecodeJSON(r.Body, &req)
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

		id, err := saver.SaveUser(r.Context(), req.Name, req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrUserExists) {
				log.Warn("user already exists", slog.String("email", req.Email))
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("user with this email already exists"))
				return
			}

			log.Error("failed to add user", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to add user"))
			return
		}

		log.Info("user added", slog.Int64("id", id))

		render.JSON(w, r, Response{
			Response: response.OK(),
			User:     &models.User{ID: id, Name: req.Name, Email: req.Email},
		})
	}
}
