package handlers

import (
	"context"
	"io"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/query"
)

// The handlers depend on these narrow views of the repositories and object storage.

type PropertyStore interface {
	Find(ctx context.Context, pred query.Predicate, limit *int) ([]*models.Property, error)
	Count(ctx context.Context, pred query.Predicate) (int, error)
	GetByID(ctx context.Context, id string) (*models.Property, error)
	Create(ctx context.Context, p *models.Property) error
	Update(ctx context.Context, p *models.Property) error
	SetStatus(ctx context.Context, id, status string) (bool, error)
	AddImage(ctx context.Context, id, key string) (bool, error)
	RemoveImage(ctx context.Context, id, key string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type EventStore interface {
	CreateEvent(ctx context.Context, e *models.Event) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	GetEvents(ctx context.Context, f models.EventFilters) ([]*models.Event, int, error)
	SetEventDeleted(ctx context.Context, id int, isDeleted bool) error
}

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, s *models.Submission) (*models.Submission, error)
	GetSubmissionByID(ctx context.Context, id int) (*models.Submission, error)
	GetSubmissions(ctx context.Context, status string, page, pageSize int) ([]*models.Submission, int, error)
	SetSubmissionStatus(ctx context.Context, id int, status string, propertyID *string) error
}

type ChatStore interface {
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error)
}

type ImageStore interface {
	UploadObject(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error)
	SignedReadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	RemoveObject(ctx context.Context, key string) error
	CheckFileAllowed(size int64, mime string) error
}
