package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
	"github.com/yigit/offerdesk/internal/pkg/filestorage"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
)

const defaultReconcileBatch = 100

// DraftStore is what the reconciler reads and repairs
type DraftStore interface {
	ListDrafts(ctx context.Context, afterID int64, limit int) ([]*models.OfferLetter, error)
	UpdateDocument(ctx context.Context, id int64, pdfURL string) (*models.OfferLetter, error)
}

// ReconcileResult summarises one pass
type ReconcileResult struct {
	Scanned  int
	Promoted int
	Failed   int
}

// Reconciler repairs drafts whose document was stored but whose record
// update never landed. It only ever moves letters forward.
type Reconciler struct {
	store   DraftStore
	storage filestorage.Storage
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(store DraftStore, storage filestorage.Storage, m *metrics.Metrics, logger zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, storage: storage, metrics: m, logger: logger}
}

// Run pages through every draft, batch rows at a time, and promotes
// those with a stored document.
func (r *Reconciler) Run(ctx context.Context, batch int) (ReconcileResult, error) {
	var res ReconcileResult
	if batch <= 0 {
		batch = defaultReconcileBatch
	}

	var afterID int64
	for {
		drafts, err := r.store.ListDrafts(ctx, afterID, batch)
		if err != nil {
			return res, fmt.Errorf("error listing drafts: %w", err)
		}

		for _, o := range drafts {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			res.Scanned++
			afterID = o.ID
			r.reconcile(ctx, o, &res)
		}

		if len(drafts) < batch {
			return res, nil
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context, o *models.OfferLetter, res *ReconcileResult) {
	key := o.DocumentKey()
	exists, err := r.storage.Exists(ctx, key)
	if err != nil {
		res.Failed++
		r.logger.Warn().Err(err).Int64("id", o.ID).Str("key", key).Msg("Could not check stored document")
		return
	}
	if !exists {
		return
	}

	if _, err := r.store.UpdateDocument(ctx, o.ID, r.storage.URL(key)); err != nil {
		// Moved on concurrently (or deleted); nothing to repair
		if errors.Is(err, apperrors.ErrPrecondition) || errors.Is(err, apperrors.ErrResourceNotFound) {
			return
		}
		res.Failed++
		r.logger.Error().Err(err).Int64("id", o.ID).Msg("Failed to promote draft")
		return
	}

	res.Promoted++
	r.metrics.DocumentReconciled()
	r.logger.Info().Int64("id", o.ID).Str("refNo", o.RefNo).Msg("Promoted draft with stored document")
}
