package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
)

type EventsRepository struct {
	db *sql.DB
}

func NewEventsRepository(db *sql.DB) *EventsRepository {
	return &EventsRepository{db: db}
}

const eventColumns = `id, title, description, city, venue, starts_at, ends_at, image_key,
	is_archived, is_deleted, created_at, modified_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	var imageKey sql.NullString
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.City, &e.Venue, &e.StartsAt, &e.EndsAt,
		&imageKey, &e.IsArchived, &e.IsDeleted, &e.CreatedAt, &e.ModifiedAt)
	if err != nil {
		return nil, err
	}
	if imageKey.Valid {
		e.ImageKey = &imageKey.String
	}
	return &e, nil
}

func (r *EventsRepository) CreateEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	var newID int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO events (title, description, city, venue, starts_at, ends_at, image_key, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`, e.Title, e.Description, e.City, e.Venue, e.StartsAt, e.EndsAt, e.ImageKey).Scan(&newID)
	if err != nil {
		return nil, err
	}
	return r.GetEventByID(ctx, newID)
}

func (r *EventsRepository) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EventsRepository) SetEventDeleted(ctx context.Context, id int, isDeleted bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events SET is_deleted = $1, modified_at = NOW()
		WHERE id = $2`, isDeleted, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ArchivePast flags every live event that ended before now.
func (r *EventsRepository) ArchivePast(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events SET is_archived = TRUE, modified_at = NOW()
		WHERE is_archived = FALSE AND is_deleted = FALSE AND ends_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func buildEventConditions(f models.EventFilters) ([]string, []interface{}, int) {
	var conditions []string
	var params []interface{}
	idx := 1

	conditions = append(conditions, "is_deleted = FALSE")
	if !f.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if f.City != nil {
		conditions = append(conditions, "LOWER(city) = LOWER($"+strconv.Itoa(idx)+")")
		params = append(params, *f.City)
		idx++
	}
	if f.From != nil {
		conditions = append(conditions, "starts_at >= $"+strconv.Itoa(idx))
		params = append(params, *f.From)
		idx++
	}
	if f.To != nil {
		conditions = append(conditions, "starts_at <= $"+strconv.Itoa(idx))
		params = append(params, *f.To)
		idx++
	}
	return conditions, params, idx
}

func (r *EventsRepository) GetEvents(ctx context.Context, f models.EventFilters) ([]*models.Event, int, error) {
	offset := (f.Page - 1) * f.PageSize
	conditions, params, idx := buildEventConditions(f)
	where := " WHERE " + strings.Join(conditions, " AND ")

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		" ORDER BY starts_at ASC, id ASC" +
		" LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)

	rows, err := r.db.QueryContext(ctx, query, append(params, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM events`+where, params...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// SetEventImage stores key on the event and returns the key it replaced.
func (r *EventsRepository) SetEventImage(ctx context.Context, id int, key *string) (*string, error) {
	var previous sql.NullString
	err := r.db.QueryRowContext(ctx, `
		UPDATE events e SET image_key = $1, modified_at = NOW()
		FROM (SELECT id, image_key FROM events WHERE id = $2 FOR UPDATE) old
		WHERE e.id = old.id
		RETURNING old.image_key`, key, id).Scan(&previous)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if previous.Valid {
		return &previous.String, nil
	}
	return nil, nil
}
