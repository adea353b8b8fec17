package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
	"github.com/lib/pq"
)

type SubmissionsRepository struct {
	db *sql.DB
}

func NewSubmissionsRepository(db *sql.DB) *SubmissionsRepository {
	return &SubmissionsRepository{db: db}
}

const submissionColumns = `id, contact_name, contact_email, contact_phone, title, description, price,
	city, area, address, property_type, bedrooms, bathrooms, square_footage, amenities,
	status, property_id, created_at, modified_at`

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var s models.Submission
	var propertyID sql.NullString
	var amenities pq.StringArray
	err := row.Scan(&s.ID, &s.ContactName, &s.ContactEmail, &s.ContactPhone, &s.Title, &s.Description,
		&s.Price, &s.City, &s.Area, &s.Address, &s.PropertyType, &s.Bedrooms, &s.Bathrooms,
		&s.SquareFootage, &amenities, &s.Status, &propertyID, &s.CreatedAt, &s.ModifiedAt)
	if err != nil {
		return nil, err
	}
	s.Amenities = []string(amenities)
	if s.Amenities == nil {
		s.Amenities = []string{}
	}
	if propertyID.Valid {
		s.PropertyID = &propertyID.String
	}
	return &s, nil
}

func (r *SubmissionsRepository) CreateSubmission(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	amenities := s.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	var newID int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO submissions (contact_name, contact_email, contact_phone, title, description, price,
			city, area, address, property_type, bedrooms, bathrooms, square_footage, amenities,
			status, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id
	`, s.ContactName, s.ContactEmail, s.ContactPhone, s.Title, s.Description, s.Price,
		s.City, s.Area, s.Address, s.PropertyType, s.Bedrooms, s.Bathrooms, s.SquareFootage,
		pq.Array(amenities), models.SubmissionPending).Scan(&newID)
	if err != nil {
		return nil, err
	}
	return r.GetSubmissionByID(ctx, newID)
}

func (r *SubmissionsRepository) GetSubmissionByID(ctx context.Context, id int) (*models.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSubmissions lists submissions newest first. An empty status lists all of them.
func (r *SubmissionsRepository) GetSubmissions(ctx context.Context, status string, page, pageSize int) ([]*models.Submission, int, error) {
	offset := (page - 1) * pageSize
	var params []interface{}
	where := ""
	idx := 1
	if status != "" {
		where = " WHERE status = $1"
		params = append(params, status)
		idx++
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions` + where +
		" ORDER BY created_at DESC, id DESC" +
		" LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)
	rows, err := r.db.QueryContext(ctx, query, append(params, pageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM submissions`+where, params...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SetSubmissionStatus moves a pending submission to its final status. It returns
// ErrNotFound when the submission does not exist or was already moderated.
func (r *SubmissionsRepository) SetSubmissionStatus(ctx context.Context, id int, status string, propertyID *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE submissions SET status = $1, property_id = $2, modified_at = NOW()
		WHERE id = $3 AND status = $4`, status, propertyID, id, models.SubmissionPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
