package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/offerdesk/internal/app/auth"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/app/models/dto"
	"github.com/yigit/offerdesk/internal/app/repositories"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
	"github.com/yigit/offerdesk/internal/pkg/document"
	"github.com/yigit/offerdesk/internal/pkg/filestorage"
	"github.com/yigit/offerdesk/internal/pkg/helpers"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
	"github.com/yigit/offerdesk/internal/pkg/websocket"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxRefAttempts bounds reference code regeneration on collision
const DefaultMaxRefAttempts = 5

// OfferLetterStore is the persistence the lifecycle needs
type OfferLetterStore interface {
	Insert(ctx context.Context, o *models.OfferLetter) error
	FindByID(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error)
	FindByOwner(ctx context.Context, ownerID int64, f repositories.OfferLetterFilter) ([]*models.OfferLetter, error)
	FindByRef(ctx context.Context, refNo string, statuses ...models.OfferLetterStatus) (*models.OfferLetter, error)
	RefExists(ctx context.Context, refNo string) (bool, error)
	UpdateDocument(ctx context.Context, id int64, pdfURL string) (*models.OfferLetter, error)
	UpdateStatus(ctx context.Context, id int64, next models.OfferLetterStatus) (*models.OfferLetter, error)
	Delete(ctx context.Context, ownerID, id int64) error
	ListDrafts(ctx context.Context, afterID int64, limit int) ([]*models.OfferLetter, error)
}

// DocumentRenderer turns letter data into PDF bytes
type DocumentRenderer interface {
	Render(data document.Data) ([]byte, error)
}

// Notifier hands a finished letter to the email relay
type Notifier interface {
	Send(ctx context.Context, req *dto.SendEmailRequest) error
}

// EventPublisher pushes lifecycle events to the owner's open dashboards
type EventPublisher interface {
	Publish(userID int64, event websocket.Event)
}

// CreateOfferLetterInput is the raw form input; dates are YYYY-MM-DD
type CreateOfferLetterInput struct {
	CandidateName  string
	CandidateEmail string
	Domain         string
	JoiningDate    string
	EndDate        string
}

// ListFilter narrows the dashboard listing
type ListFilter struct {
	Status string
	Query  string
	Limit  int
}

// OfferLetterService defines the interface for offer letter lifecycle operations
type OfferLetterService interface {
	Create(ctx context.Context, ownerID int64, in CreateOfferLetterInput) (*models.OfferLetter, error)
	Get(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]*models.OfferLetter, int, error)
	Certificates(ctx context.Context, ownerID int64, query string, limit int) ([]*models.OfferLetter, int, error)
	EnsureDocument(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error)
	Notify(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// offerLetterServiceImpl implements OfferLetterService
type offerLetterServiceImpl struct {
	store    OfferLetterStore
	renderer DocumentRenderer
	storage  filestorage.Storage
	notifier Notifier
	events   EventPublisher
	authz    *auth.AuthorizationService
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	flights  singleflight.Group
	refNo    func(attempt int) string
	attempts int
	now      func() time.Time
}

// OfferLetterDeps groups the collaborators of the lifecycle service
type OfferLetterDeps struct {
	Store          OfferLetterStore
	Renderer       DocumentRenderer
	Storage        filestorage.Storage
	Notifier       Notifier
	Events         EventPublisher
	Authz          *auth.AuthorizationService
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
	MaxRefAttempts int
	// RefNo overrides reference code generation; attempt starts at 0
	RefNo func(attempt int) string
}

// NewOfferLetterService creates a new OfferLetterService
func NewOfferLetterService(deps OfferLetterDeps) OfferLetterService {
	s := &offerLetterServiceImpl{
		store:    deps.Store,
		renderer: deps.Renderer,
		storage:  deps.Storage,
		notifier: deps.Notifier,
		events:   deps.Events,
		authz:    deps.Authz,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		refNo:    deps.RefNo,
		attempts: deps.MaxRefAttempts,
		now:      time.Now,
	}
	if s.attempts < 1 {
		s.attempts = DefaultMaxRefAttempts
	}
	if s.refNo == nil {
		s.refNo = func(attempt int) string { return GenerateRefNo(s.now(), attempt) }
	}
	return s
}

// GenerateRefNo derives "OL" plus six digits from the millisecond clock,
// offset by the retry attempt.
func GenerateRefNo(now time.Time, attempt int) string {
	return fmt.Sprintf("OL%06d", (now.UnixMilli()+int64(attempt))%1_000_000)
}

func (in CreateOfferLetterInput) validate() (joining, end time.Time, err error) {
	required := []struct{ field, value string }{
		{"candidateName", in.CandidateName},
		{"candidateEmail", in.CandidateEmail},
		{"domain", in.Domain},
		{"joiningDate", in.JoiningDate},
		{"endDate", in.EndDate},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return joining, end, apperrors.NewValidationError(r.field, r.field+" is required")
		}
	}

	joining, err = helpers.ParseISODate(in.JoiningDate)
	if err != nil {
		return joining, end, apperrors.NewValidationError("joiningDate", "joiningDate must be a date in YYYY-MM-DD format")
	}
	end, err = helpers.ParseISODate(in.EndDate)
	if err != nil {
		return joining, end, apperrors.NewValidationError("endDate", "endDate must be a date in YYYY-MM-DD format")
	}
	if end.Before(joining) {
		return joining, end, apperrors.NewValidationError("endDate", "End date must not be before joining date")
	}
	return joining, end, nil
}

// Create validates the input and stores a new draft under a fresh reference code
func (s *offerLetterServiceImpl) Create(ctx context.Context, ownerID int64, in CreateOfferLetterInput) (*models.OfferLetter, error) {
	joining, end, err := in.validate()
	if err != nil {
		return nil, s.fail("create", err)
	}
	if s.authz != nil {
		if err := s.authz.ValidateUser(ctx, ownerID); err != nil {
			return nil, s.fail("create", err)
		}
	}

	o := &models.OfferLetter{
		CandidateName:  strings.TrimSpace(in.CandidateName),
		CandidateEmail: strings.TrimSpace(in.CandidateEmail),
		Domain:         strings.TrimSpace(in.Domain),
		JoiningDate:    joining,
		EndDate:        end,
		Status:         models.StatusDraft,
		CreatedBy:      ownerID,
	}

	for attempt := 0; attempt < s.attempts; attempt++ {
		o.RefNo = s.refNo(attempt)

		exists, err := s.store.RefExists(ctx, o.RefNo)
		if err != nil {
			return nil, s.fail("create", fmt.Errorf("error checking reference number: %w", err))
		}
		if exists {
			s.logger.Debug().Str("refNo", o.RefNo).Int("attempt", attempt).Msg("Reference number taken, regenerating")
			continue
		}

		err = s.store.Insert(ctx, o)
		if errors.Is(err, repositories.ErrDuplicateRefNo) {
			s.logger.Debug().Str("refNo", o.RefNo).Int("attempt", attempt).Msg("Reference number collided on insert, regenerating")
			continue
		}
		if err != nil {
			return nil, s.fail("create", fmt.Errorf("error creating offer letter: %w", err))
		}

		s.metrics.OfferLetterCreated()
		s.publish(websocket.EventCreated, o)
		s.logger.Info().Int64("id", o.ID).Str("refNo", o.RefNo).Int64("ownerID", ownerID).Msg("Offer letter created")
		return o, nil
	}

	return nil, s.fail("create", apperrors.NewConflictError("Could not allocate a unique reference number, please retry"))
}

// Get retrieves one of the owner's letters
func (s *offerLetterServiceImpl) Get(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error) {
	o, err := s.store.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if s.authz != nil {
		if err := s.authz.EnsureOwner(o, ownerID); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// List returns the owner's letters newest first, with the effective page size
func (s *offerLetterServiceImpl) List(ctx context.Context, ownerID int64, filter ListFilter) ([]*models.OfferLetter, int, error) {
	f := repositories.OfferLetterFilter{
		Query: filter.Query,
		Limit: helpers.NormalizeLimit(filter.Limit),
	}
	if filter.Status != "" {
		status := models.OfferLetterStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, apperrors.NewValidationError("status", "status must be one of: draft generated sent")
		}
		f.Statuses = []models.OfferLetterStatus{status}
	}

	letters, err := s.store.FindByOwner(ctx, ownerID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing offer letters: %w", err)
	}
	return letters, f.Limit, nil
}

// Certificates lists the owner's letters that have a document
func (s *offerLetterServiceImpl) Certificates(ctx context.Context, ownerID int64, query string, limit int) ([]*models.OfferLetter, int, error) {
	f := repositories.OfferLetterFilter{
		Statuses: models.PublicStatuses,
		Query:    query,
		Limit:    helpers.NormalizeLimit(limit),
	}
	letters, err := s.store.FindByOwner(ctx, ownerID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing certificates: %w", err)
	}
	return letters, f.Limit, nil
}

// EnsureDocument returns the letter with a stored PDF, rendering it on first use.
// Concurrent calls for the same letter share one render.
func (s *offerLetterServiceImpl) EnsureDocument(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error) {
	o, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if o.HasDocument() {
		return o, nil
	}

	// The shared render must not die with whichever caller started it
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.flights.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		return s.generate(flightCtx, ownerID, id)
	})
	if err != nil {
		return nil, s.fail("ensure_document", err)
	}
	if shared {
		s.logger.Debug().Int64("id", id).Msg("Joined in-flight document generation")
	}

	copied := *v.(*models.OfferLetter)
	return &copied, nil
}

func (s *offerLetterServiceImpl) generate(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error) {
	// Re-read inside the flight; a previous flight may have just finished
	o, err := s.store.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if o.HasDocument() {
		return o, nil
	}

	start := s.now()
	pdf, err := s.renderer.Render(document.Data{
		CandidateName: o.CandidateName,
		Domain:        o.Domain,
		JoiningDate:   o.JoiningDate,
		EndDate:       o.EndDate,
		RefNo:         o.RefNo,
	})
	if err != nil {
		return nil, apperrors.NewRenderError("Failed to generate offer letter PDF", err)
	}
	renderTime := s.now().Sub(start)

	url, err := s.storage.Put(ctx, o.DocumentKey(), pdf, filestorage.ContentTypePDF)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to store offer letter PDF", err)
	}

	updated, err := s.store.UpdateDocument(ctx, o.ID, url)
	if err != nil {
		return nil, fmt.Errorf("error recording document location: %w", err)
	}

	s.metrics.DocumentGenerated(renderTime)
	s.publish(websocket.EventGenerated, updated)
	s.logger.Info().Int64("id", updated.ID).Str("refNo", updated.RefNo).Int("bytes", len(pdf)).Msg("Offer letter document generated")
	return updated, nil
}

// Notify emails the stored document to the candidate through the relay and
// marks the letter sent. Re-sending a sent letter keeps it sent.
func (s *offerLetterServiceImpl) Notify(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error) {
	o, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !o.HasDocument() {
		return nil, s.fail("notify", apperrors.NewPreconditionError("Generate the offer letter PDF before sending it"))
	}

	req := &dto.SendEmailRequest{
		To:            o.CandidateEmail,
		Subject:       "Offer Letter - " + o.RefNo,
		PdfURL:        *o.PdfURL,
		RecipientName: o.CandidateName,
	}
	if err := s.notifier.Send(ctx, req); err != nil {
		if !errors.Is(err, apperrors.ErrRelay) {
			err = apperrors.NewRelayError(err.Error()).WithCause(err)
		}
		s.logger.Warn().Err(err).Int64("id", o.ID).Str("refNo", o.RefNo).Msg("Relay rejected offer letter email")
		return nil, s.fail("notify", err)
	}

	updated, err := s.store.UpdateStatus(ctx, o.ID, models.StatusSent)
	if err != nil {
		return nil, s.fail("notify", fmt.Errorf("error marking offer letter sent: %w", err))
	}

	s.metrics.OfferLetterSent()
	s.publish(websocket.EventSent, updated)
	s.logger.Info().Int64("id", updated.ID).Str("refNo", updated.RefNo).Msg("Offer letter sent")
	return updated, nil
}

// Delete removes the stored document, then the record. A document that
// cannot be removed is logged and does not stop the delete.
func (s *offerLetterServiceImpl) Delete(ctx context.Context, ownerID, id int64) error {
	o, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, o.DocumentKey()); err != nil {
		s.metrics.LifecycleFailure("delete_document", apperrors.Kind(err))
		s.logger.Warn().Err(err).Int64("id", o.ID).Str("key", o.DocumentKey()).Msg("Failed to delete stored document, deleting record anyway")
	}

	if err := s.store.Delete(ctx, ownerID, o.ID); err != nil {
		return s.fail("delete", err)
	}

	s.publish(websocket.EventDeleted, o)
	s.logger.Info().Int64("id", o.ID).Str("refNo", o.RefNo).Msg("Offer letter deleted")
	return nil
}

func (s *offerLetterServiceImpl) publish(eventType string, o *models.OfferLetter) {
	if s.events == nil {
		return
	}
	event := websocket.Event{
		Type:          eventType,
		OfferLetterID: o.ID,
		RefNo:         o.RefNo,
		Status:        string(o.Status),
	}
	if o.PdfURL != nil {
		event.PdfURL = *o.PdfURL
	}
	s.events.Publish(o.CreatedBy, event)
}

func (s *offerLetterServiceImpl) fail(operation string, err error) error {
	s.metrics.LifecycleFailure(operation, apperrors.Kind(err))
	return err
}
