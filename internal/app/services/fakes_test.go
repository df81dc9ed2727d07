package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/app/models/dto"
	"github.com/yigit/offerdesk/internal/app/repositories"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
	"github.com/yigit/offerdesk/internal/pkg/document"
	"github.com/yigit/offerdesk/internal/pkg/websocket"
)

// memStore is an in-memory OfferLetterStore with the same guards as the SQL one
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	letters map[int64]*models.OfferLetter

	insertErr     error
	updateDocErr  error
	deleteErr     error
	duplicateOnce map[string]bool
}

func newMemStore() *memStore {
	return &memStore{letters: map[int64]*models.OfferLetter{}, duplicateOnce: map[string]bool{}}
}

func clone(o *models.OfferLetter) *models.OfferLetter {
	c := *o
	return &c
}

func (m *memStore) Insert(_ context.Context, o *models.OfferLetter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.duplicateOnce[o.RefNo] {
		delete(m.duplicateOnce, o.RefNo)
		return repositories.ErrDuplicateRefNo
	}
	for _, existing := range m.letters {
		if existing.RefNo == o.RefNo {
			return repositories.ErrDuplicateRefNo
		}
	}
	m.nextID++
	o.ID = m.nextID
	o.Status = models.StatusDraft
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	m.letters[o.ID] = clone(o)
	return nil
}

func (m *memStore) FindByID(_ context.Context, ownerID, id int64) (*models.OfferLetter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.letters[id]
	if !ok || o.CreatedBy != ownerID {
		return nil, apperrors.NewResourceNotFoundError("Offer letter not found")
	}
	return clone(o), nil
}

func (m *memStore) FindByOwner(_ context.Context, ownerID int64, f repositories.OfferLetterFilter) ([]*models.OfferLetter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.OfferLetter, 0)
	for _, o := range m.letters {
		if o.CreatedBy != ownerID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
			hay := strings.ToLower(o.CandidateName + " " + o.CandidateEmail + " " + o.RefNo)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, clone(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) FindByRef(_ context.Context, refNo string, statuses ...models.OfferLetterStatus) (*models.OfferLetter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.letters {
		if o.RefNo == refNo && (len(statuses) == 0 || containsStatus(statuses, o.Status)) {
			return clone(o), nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("Offer letter not found")
}

func (m *memStore) RefExists(_ context.Context, refNo string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.letters {
		if o.RefNo == refNo {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpdateDocument(_ context.Context, id int64, pdfURL string) (*models.OfferLetter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateDocErr != nil {
		return nil, m.updateDocErr
	}
	o, ok := m.letters[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Offer letter not found")
	}
	if !o.Status.CanTransitionTo(models.StatusGenerated) {
		return nil, apperrors.NewPreconditionError("Offer letter is sent")
	}
	o.PdfURL = &pdfURL
	o.Status = models.StatusGenerated
	return clone(o), nil
}

func (m *memStore) UpdateStatus(_ context.Context, id int64, next models.OfferLetterStatus) (*models.OfferLetter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.letters[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Offer letter not found")
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, apperrors.NewPreconditionError("cannot move backwards")
	}
	o.Status = next
	if next == models.StatusSent && o.SentAt == nil {
		now := time.Now().UTC()
		o.SentAt = &now
	}
	return clone(o), nil
}

func (m *memStore) Delete(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	o, ok := m.letters[id]
	if !ok || o.CreatedBy != ownerID {
		return apperrors.NewResourceNotFoundError("Offer letter not found")
	}
	delete(m.letters, id)
	return nil
}

func (m *memStore) ListDrafts(_ context.Context, afterID int64, limit int) ([]*models.OfferLetter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.OfferLetter, 0)
	for _, o := range m.letters {
		if o.Status == models.StatusDraft && o.ID > afterID {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) get(id int64) *models.OfferLetter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.letters[id]; ok {
		return clone(o)
	}
	return nil
}

func containsStatus(list []models.OfferLetterStatus, s models.OfferLetterStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// memStorage is an in-memory document store
type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
	existsErr error
	puts      int
	onPut     func()
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.onPut != nil {
		s.onPut()
	}
	if s.putErr != nil {
		return "", s.putErr
	}
	s.objects[key] = data
	return s.URL(key), nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *memStorage) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.objects[key]
	return ok, nil
}

func (s *memStorage) URL(key string) string {
	return "http://files.test/documents/" + key
}

func (s *memStorage) has(key string) bool {
	ok, _ := s.Exists(context.Background(), key)
	return ok
}

// countingRenderer records calls and can block until released
type countingRenderer struct {
	calls   atomic.Int32
	err     error
	entered chan struct{}
	release chan struct{}
}

func (r *countingRenderer) Render(data document.Data) ([]byte, error) {
	r.calls.Add(1)
	if r.entered != nil {
		r.entered <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(fmt.Sprintf("%%PDF-1.3 %s %s", data.RefNo, data.CandidateName)), nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, req *dto.SendEmailRequest) error {
	return m.Called(ctx, req).Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *recordingPublisher) Publish(_ int64, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

var errBoom = errors.New("boom")
