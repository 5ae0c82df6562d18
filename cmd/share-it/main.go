package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"shareIt/internal/config"
	"shareIt/internal/http-server/handlers/booking/approveBooking"
	"shareIt/internal/http-server/handlers/booking/createBooking"
	"shareIt/internal/http-server/handlers/booking/getBooking"
	"shareIt/internal/http-server/handlers/booking/listBookings"
	"shareIt/internal/http-server/handlers/item/createItem"
	"shareIt/internal/http-server/handlers/user/createUser"
	"shareIt/internal/http-server/middleware/mwlogger"
	"shareIt/internal/http-server/middleware/mwmetrics"
	"shareIt/internal/lib/api/response"
	"shareIt/internal/lib/logger/handlers/slogpretty"
	"shareIt/internal/lib/logger/sl"
	"shareIt/internal/lib/metrics"
	"shareIt/internal/models"
	"shareIt/internal/services/booking"
	"shareIt/internal/storage/memory"
	"shareIt/internal/storage/postgres"
	"shareIt/internal/storage/redis"
	"syscall"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// appStorage is what both storage backends provide.
type appStorage interface {
	booking.Storage
	SaveUser(ctx context.Context, name, email string) (int64, error)
	SaveItem(ctx context.Context, ownerID int64, name, description string, available bool) (int64, error)
	User(ctx context.Context, id int64) (*models.User, error)
	Item(ctx context.Context, id int64) (*models.Item, error)
	Close() error
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting share-it", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage))
	log.Debug("debug messages are enabled")

	storage, err := setupStorage(cfg)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	var users booking.UserProvider = storage
	if cfg.Redis.Address != "" {
		client, err := redis.NewClient(context.Background(), cfg.Redis.Address)
		if err != nil {
			log.Error("failed to connect to redis", sl.Err(err))
			os.Exit(1)
		}
		defer client.Close()

		users = redis.NewUserCache(log, client, storage, cfg.Redis.UserTTL, m)
		log.Info("user cache enabled", slog.Duration("ttl", cfg.Redis.UserTTL))
	}

	bookings := booking.New(log, storage, users, storage,
		booking.WithOverlapCheck(cfg.Booking.RejectOverlaps),
		booking.WithMetrics(m),
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(mwmetrics.New(m))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	})

	router.Post("/users", createUser.New(log, storage))
	router.Post("/items", createItem.New(log, storage))

	router.Route("/bookings", func(r chi.Router) {
		r.Post("/", createBooking.New(log, bookings))
		r.Get("/", listBookings.NewForBooker(log, bookings))
		r.Get("/owner", listBookings.NewForOwner(log, bookings))
		r.Get("/{id}", getBooking.New(log, bookings))
		r.Patch("/{id}", approveBooking.New(log, bookings))
	})

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	log.Info("storage closed")
}

func setupStorage(cfg *config.Config) (appStorage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StoragePostgres:
		s, err := postgres.InitDB(&cfg.Database)
		if err != nil {
			return nil, err
		}

		if cfg.Database.MigrationsPath != "" {
			if err = s.Migrate(cfg.Database.MigrationsPath); err != nil {
				_ = s.Close()
				return nil, err
			}
		}

		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
