package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/court-timetable/internal/selection"
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context, filter Filter) ([]*Session, int, error)

	// UpdateSelection stores a new selection if the row was not modified since lastUpdated.
	UpdateSelection(ctx context.Context, id string, ids selection.Set, lastUpdated time.Time) (*Session, error)
	// ResetContext switches venue and date and clears selection and hold in one statement.
	ResetContext(ctx context.Context, id string, venueID string, date time.Time) (*Session, error)

	// ClaimCheckout reserves the session for one checkout: it stamps a pending hold
	// ending at until, provided the row is unchanged since lastUpdated and no hold runs at now.
	ClaimCheckout(ctx context.Context, id string, lastUpdated, now, until time.Time) (*Session, error)
	// ReleaseCheckout drops a pending hold that never got a booking.
	ReleaseCheckout(ctx context.Context, id string, claimedUntil time.Time) error
	// SetHold attaches the booking to the pending hold ending at claimedUntil.
	SetHold(ctx context.Context, id string, claimedUntil time.Time, bookingID string, expiresAt time.Time) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var sessionColumns = []string{
	"id", "user_id", "venue_id", "date", "selected_slot_ids",
	"booking_id", "hold_expires_at", "created_at", "updated_at",
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// slotIDs converts a selection for storage; a nil slice would be written as NULL.
func slotIDs(s selection.Set) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}

func scanSession(row pgx.Row, extra ...any) (*Session, error) {
	var s Session
	var ids []string
	dest := []any{
		&s.ID, &s.UserID, &s.VenueID, &s.Date, &ids,
		&s.BookingID, &s.HoldExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	s.SelectedSlotIDs = selection.Set(ids)
	return &s, nil
}

// notFound maps missing rows and malformed uuids to ErrNotFound.
func notFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}

func (r *pgxRepository) Create(ctx context.Context, s *Session) error {
	query, args, err := psql().Insert("public.schedule_sessions").
		Columns("user_id", "venue_id", "date", "selected_slot_ids").
		Values(s.UserID, s.VenueID, s.Date, slotIDs(s.SelectedSlotIDs)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create session query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Session, error) {
	query, args, err := psql().Select(sessionColumns...).
		From("public.schedule_sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get session query failed: %w", err)
	}

	s, err := scanSession(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Session, int, error) {
	query := psql().Select(append(sessionColumns, "count(*) OVER() as total_count")...).
		From("public.schedule_sessions")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.VenueID != "" {
		query = query.Where(squirrel.Eq{"venue_id": filter.VenueID})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.OrderBy("updated_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list sessions query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions failed: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	var total int
	for rows.Next() {
		s, err := scanSession(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan session failed: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate sessions failed: %w", err)
	}

	return sessions, total, nil
}

func (r *pgxRepository) UpdateSelection(ctx context.Context, id string, ids selection.Set, lastUpdated time.Time) (*Session, error) {
	query, args, err := psql().Update("public.schedule_sessions").
		Set("selected_slot_ids", slotIDs(ids)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "updated_at": lastUpdated}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update selection query failed: %w", err)
	}

	s, err := scanSession(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("update selection failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) ResetContext(ctx context.Context, id string, venueID string, date time.Time) (*Session, error) {
	query, args, err := psql().Update("public.schedule_sessions").
		Set("venue_id", venueID).
		Set("date", date).
		Set("selected_slot_ids", []string{}).
		Set("booking_id", nil).
		Set("hold_expires_at", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reset context query failed: %w", err)
	}

	s, err := scanSession(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reset session context failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) ClaimCheckout(ctx context.Context, id string, lastUpdated, now, until time.Time) (*Session, error) {
	query, args, err := psql().Update("public.schedule_sessions").
		Set("booking_id", nil).
		Set("hold_expires_at", until).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "updated_at": lastUpdated}).
		Where(squirrel.Or{
			squirrel.Eq{"hold_expires_at": nil},
			squirrel.LtOrEq{"hold_expires_at": now},
		}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build claim checkout query failed: %w", err)
	}

	s, err := scanSession(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("claim checkout failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) ReleaseCheckout(ctx context.Context, id string, claimedUntil time.Time) error {
	query, args, err := psql().Update("public.schedule_sessions").
		Set("hold_expires_at", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "booking_id": nil, "hold_expires_at": claimedUntil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release checkout query failed: %w", err)
	}

	// Zero rows means the claim was already replaced, which is fine.
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("release checkout failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SetHold(ctx context.Context, id string, claimedUntil time.Time, bookingID string, expiresAt time.Time) (*Session, error) {
	query, args, err := psql().Update("public.schedule_sessions").
		Set("booking_id", bookingID).
		Set("hold_expires_at", expiresAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "booking_id": nil, "hold_expires_at": claimedUntil}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build set hold query failed: %w", err)
	}

	s, err := scanSession(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if notFound(err) {
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("set session hold failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql().Delete("public.schedule_sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete session query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete session failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func joinColumns() string {
	return strings.Join(sessionColumns, ", ")
}
