package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/lib/pq"
	"shareIt/internal/config"
	"shareIt/internal/models"
	"shareIt/internal/storage"
	"strings"
	"time"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type Storage struct {
	DB *sql.DB
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) SaveUser(ctx context.Context, name, email string) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id`

	var id int64
	err := s.DB.QueryRowContext(ctx, query, name, email).Scan(&id)
	if err != nil {
		if pqCode(err) == codeUniqueViolation {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) SaveItem(ctx context.Context, ownerID int64, name, description string, available bool) (int64, error) {
	const op = "storage.postgres.SaveItem"

	query := `
		INSERT INTO items (name, description, is_available, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := s.DB.QueryRowContext(ctx, query, name, description, available, ownerID).Scan(&id)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) User(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.postgres.User"

	query := `
		SELECT id, name, email
		FROM users
		WHERE id = $1`

	var u models.User
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

func (s *Storage) Item(ctx context.Context, id int64) (*models.Item, error) {
	const op = "storage.postgres.Item"

	query := `
		SELECT id, name, description, is_available, owner_id
		FROM items
		WHERE id = $1`

	var it models.Item
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &it, nil
}

// SaveBooking inserts b as WAITING. The item row stays locked until commit, so
// concurrent bookings of the same item are serialized and the availability
// (and, with rejectOverlaps, the overlap) check cannot be raced.
func (s *Storage) SaveBooking(ctx context.Context, b models.Booking, rejectOverlaps bool) (int64, error) {
	const op = "storage.postgres.SaveBooking"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT is_available
		FROM items
		WHERE id = $1
		FOR UPDATE`

	var available bool
	err = tx.QueryRowContext(ctx, lockQuery, b.Item.ID).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return 0, fmt.Errorf("%s: failed to lock item: %w", op, err)
	}

	if !available {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrItemUnavailable)
	}

	if rejectOverlaps {
		overlapQuery := `
			SELECT EXISTS(
				SELECT 1 FROM bookings
				WHERE item_id = $1 AND status <> $2
				AND start_time < $4 AND end_time > $3
			)`

		var overlap bool
		err = tx.QueryRowContext(ctx, overlapQuery,
			b.Item.ID, string(models.StatusRejected), b.Start, b.End,
		).Scan(&overlap)
		if err != nil {
			return 0, fmt.Errorf("%s: failed to check overlap: %w", op, err)
		}

		if overlap {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrBookingOverlap)
		}
	}

	insertQuery := `
		INSERT INTO bookings (item_id, booker_id, status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err = tx.QueryRowContext(ctx, insertQuery,
		b.Item.ID, b.Booker.ID, string(models.StatusWaiting), b.Start, b.End,
	).Scan(&id)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return 0, fmt.Errorf("%s: failed to create booking: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return id, nil
}

const bookingSelect = `
		SELECT b.id, b.status, b.start_time, b.end_time,
		       i.id, i.name, i.description, i.is_available, i.owner_id,
		       u.id, u.name, u.email
		FROM bookings b
		JOIN items i ON i.id = b.item_id
		JOIN users u ON u.id = b.booker_id`

func (s *Storage) Booking(ctx context.Context, id int64) (*models.Booking, error) {
	const op = "storage.postgres.Booking"

	query := bookingSelect + `
		WHERE b.id = $1`

	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// UpdateBookingStatus is a compare-and-set: the row changes only while it is
// still in status from.
func (s *Storage) UpdateBookingStatus(ctx context.Context, id int64, from, to models.Status) error {
	const op = "storage.postgres.UpdateBookingStatus"

	updateQuery := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2 AND status = $3`

	res, err := s.DB.ExecContext(ctx, updateQuery, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("%s: failed to update status: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	err = s.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	}

	return fmt.Errorf("%s: %w", op, storage.ErrStatusConflict)
}

func (s *Storage) BookingsByBooker(
	ctx context.Context,
	bookerID int64,
	state models.State,
	now time.Time,
	page models.Page,
) ([]models.Booking, error) {
	return s.listBookings(ctx, "storage.postgres.BookingsByBooker", "b.booker_id = $1", bookerID, state, now, page)
}

func (s *Storage) BookingsByOwner(
	ctx context.Context,
	ownerID int64,
	state models.State,
	now time.Time,
	page models.Page,
) ([]models.Booking, error) {
	return s.listBookings(ctx, "storage.postgres.BookingsByOwner", "i.owner_id = $1", ownerID, state, now, page)
}

func (s *Storage) listBookings(
	ctx context.Context,
	op string,
	subject string,
	subjectID int64,
	state models.State,
	now time.Time,
	page models.Page,
) ([]models.Booking, error) {
	predicate, stateArgs, err := statePredicate(state, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	where := []string{subject}
	args := []any{subjectID}
	if predicate != "" {
		where = append(where, predicate)
		args = append(args, stateArgs...)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY b.start_time DESC, b.id DESC
		LIMIT $%d OFFSET $%d`,
		bookingSelect, strings.Join(where, " AND "), len(args)+1, len(args)+2,
	)
	args = append(args, page.Limit, page.Offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get bookings: %w", op, err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0, page.Limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan booking: %w", op, err)
		}
		bookings = append(bookings, *b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating bookings: %w", op, err)
	}

	return bookings, nil
}

// statePredicate resolves a listing state into its single SQL condition. The
// subject id always occupies $1, so state arguments start at $2.
func statePredicate(state models.State, now time.Time) (string, []any, error) {
	switch state {
	case models.StateAll:
		return "", nil, nil
	case models.StateCurrent:
		return "b.start_time <= $2 AND b.end_time >= $2", []any{now}, nil
	case models.StatePast:
		return "b.end_time < $2", []any{now}, nil
	case models.StateFuture:
		return "b.start_time > $2", []any{now}, nil
	case models.StateWaiting, models.StateApproved, models.StateRejected:
		status, _ := state.Status()
		return "b.status = $2", []any{string(status)}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", models.ErrUnknownState, state)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b      models.Booking
		status string
	)

	err := row.Scan(
		&b.ID,
		&status,
		&b.Start,
		&b.End,
		&b.Item.ID,
		&b.Item.Name,
		&b.Item.Description,
		&b.Item.Available,
		&b.Item.OwnerID,
		&b.Booker.ID,
		&b.Booker.Name,
		&b.Booker.Email,
	)
	if err != nil {
		return nil, err
	}

	b.Status = models.Status(status)

	return &b, nil
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
