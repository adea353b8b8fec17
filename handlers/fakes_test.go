package handlers

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/initializers"
	"github.com/bitirgenalperen/ilkevim-sub000/models"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/query"
	"github.com/bitirgenalperen/ilkevim-sub000/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func cloneProperty(p *models.Property) *models.Property {
	cp := *p
	cp.Amenities = append([]string(nil), p.Amenities...)
	cp.Images = append([]string(nil), p.Images...)
	return &cp
}

// fakeProperties evaluates predicates in memory with Predicate.Match.
type fakeProperties struct {
	mu    sync.Mutex
	items map[string]*models.Property
}

func newFakeProperties() *fakeProperties {
	return &fakeProperties{items: make(map[string]*models.Property)}
}

func (f *fakeProperties) matching(pred query.Predicate) []*models.Property {
	var out []*models.Property
	for _, p := range f.items {
		if pred.Match(p) {
			out = append(out, cloneProperty(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func (f *fakeProperties) Find(ctx context.Context, pred query.Predicate, limit *int) ([]*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.matching(pred)
	if n := repository.EffectiveLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeProperties) Count(ctx context.Context, pred query.Predicate) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matching(pred)), nil
}

func (f *fakeProperties) GetByID(ctx context.Context, id string) (*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.items[id]; ok {
		return cloneProperty(p), nil
	}
	return nil, nil
}

func (f *fakeProperties) Create(ctx context.Context, p *models.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	f.items[p.ID.Hex()] = cloneProperty(p)
	return nil
}

func (f *fakeProperties) Update(ctx context.Context, p *models.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[p.ID.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	// Like the $set in the repository, images and createdAt are left alone.
	next := cloneProperty(p)
	next.Images = current.Images
	next.CreatedAt = current.CreatedAt
	f.items[p.ID.Hex()] = next
	return nil
}

func (f *fakeProperties) change(id string, fn func(p *models.Property)) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return false, nil
	}
	fn(p)
	return true, nil
}

func (f *fakeProperties) SetStatus(ctx context.Context, id, status string) (bool, error) {
	return f.change(id, func(p *models.Property) { p.Status = status })
}

func (f *fakeProperties) AddImage(ctx context.Context, id, key string) (bool, error) {
	return f.change(id, func(p *models.Property) { p.Images = append(p.Images, key) })
}

func (f *fakeProperties) RemoveImage(ctx context.Context, id, key string) (bool, error) {
	return f.change(id, func(p *models.Property) {
		kept := p.Images[:0]
		for _, k := range p.Images {
			if k != key {
				kept = append(kept, k)
			}
		}
		p.Images = kept
	})
}

func (f *fakeProperties) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[id]
	delete(f.items, id)
	return ok, nil
}

type fakeImages struct {
	mu       sync.Mutex
	conf     initializers.StorageConfig
	uploaded map[string]string
	removed  []string
}

func newFakeImages() *fakeImages {
	return &fakeImages{
		conf:     initializers.StorageConfig{MaxSize: 1 << 20, FileTypes: []string{"image/jpeg", "image/png"}},
		uploaded: make(map[string]string),
	}
}

func (f *fakeImages) UploadObject(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[key] = contentType
	return key, nil
}

func (f *fakeImages) SignedReadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if strings.HasPrefix(key, "broken/") {
		return "", errors.New("cannot sign")
	}
	return "https://cdn.test/" + key + "?X-Amz-Signature=abc", nil
}

func (f *fakeImages) RemoveObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeImages) CheckFileAllowed(size int64, mime string) error {
	return f.conf.CheckFileAllowed(size, mime)
}

type fakeEvents struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*models.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{nextID: 1, items: make(map[int]*models.Event)}
}

func (f *fakeEvents) CreateEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	cp.ID = f.nextID
	f.nextID++
	cp.CreatedAt = time.Now()
	f.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeEvents) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeEvents) GetEvents(ctx context.Context, filter models.EventFilters) ([]*models.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Event
	for _, e := range f.items {
		switch {
		case e.IsDeleted, e.IsArchived && !filter.IncludeArchived:
			continue
		case filter.City != nil && !strings.EqualFold(*filter.City, e.City):
			continue
		case filter.From != nil && e.StartsAt.Before(*filter.From):
			continue
		case filter.To != nil && e.StartsAt.After(*filter.To):
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	total := len(out)
	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (f *fakeEvents) SetEventDeleted(ctx context.Context, id int, isDeleted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.IsDeleted = isDeleted
	return nil
}

func (f *fakeEvents) SetEventImage(ctx context.Context, id int, key *string) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	previous := e.ImageKey
	e.ImageKey = key
	return previous, nil
}

type fakeSubmissions struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*models.Submission
}

func newFakeSubmissions() *fakeSubmissions {
	return &fakeSubmissions{nextID: 1, items: make(map[int]*models.Submission)}
}

func (f *fakeSubmissions) CreateSubmission(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	cp.ID = f.nextID
	f.nextID++
	cp.Status = models.SubmissionPending
	cp.CreatedAt = time.Now()
	f.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeSubmissions) GetSubmissionByID(ctx context.Context, id int) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSubmissions) GetSubmissions(ctx context.Context, status string, page, pageSize int) ([]*models.Submission, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Submission
	for _, s := range f.items {
		if status == "" || s.Status == status {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (f *fakeSubmissions) SetSubmissionStatus(ctx context.Context, id int, status string, propertyID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok || s.Status != models.SubmissionPending {
		return repository.ErrNotFound
	}
	s.Status = status
	s.PropertyID = propertyID
	return nil
}

type fakeChat struct {
	mu       sync.Mutex
	messages []*models.ChatMessage
	err      error
}

func (f *fakeChat) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	msg.ID = int64(len(f.messages) + 1)
	msg.CreatedAt = time.Now()
	cp := *msg
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeChat) GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ChatMessage, 0)
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// recordingNotifier collects notifications sent through notify.Async.
type recordingNotifier struct {
	sent chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan string, 16)}
}

func (n *recordingNotifier) Notify(ctx context.Context, text string) error {
	n.sent <- text
	return nil
}

func (n *recordingNotifier) next(timeout time.Duration) (string, bool) {
	select {
	case s := <-n.sent:
		return s, true
	case <-time.After(timeout):
		return "", false
	}
}
