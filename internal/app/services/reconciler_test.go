package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
)

func TestReconciler_PromotesDraftsWithStoredDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orphaned, err := f.svc.Create(ctx, owner, ashaRao())
	require.NoError(t, err)
	plain, err := f.svc.Create(ctx, owner, ashaRao())
	require.NoError(t, err)

	// Document stored but the record update never happened
	_, err = f.storage.Put(ctx, orphaned.DocumentKey(), []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	r := NewReconciler(f.store, f.storage, metrics.New(), zerolog.Nop())
	res, err := r.Run(ctx, 100)
	require.NoError(t, err)

	assert.Equal(t, ReconcileResult{Scanned: 2, Promoted: 1}, res)

	fixed := f.store.get(orphaned.ID)
	assert.Equal(t, models.StatusGenerated, fixed.Status)
	require.NotNil(t, fixed.PdfURL)
	assert.Equal(t, f.storage.URL(orphaned.DocumentKey()), *fixed.PdfURL)

	assert.Equal(t, models.StatusDraft, f.store.get(plain.ID).Status)

	// A second pass has nothing left to do
	res, err = r.Run(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Scanned: 1}, res)
}

func TestReconciler_CountsStorageFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, owner, ashaRao())
	require.NoError(t, err)

	f.storage.existsErr = errBoom
	res, err := NewReconciler(f.store, f.storage, nil, zerolog.Nop()).Run(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Scanned: 1, Failed: 1}, res)
}

func TestReconciler_StopsOnCancelledContext(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), owner, ashaRao())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewReconciler(f.store, f.storage, nil, zerolog.Nop()).Run(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReconciler_PagesPastFirstBatch(t *testing.T) {
	f := newFixture(t, "OL000001", "OL000002", "OL000003")
	ctx := context.Background()

	var drafts []*models.OfferLetter
	for i := 0; i < 3; i++ {
		o, err := f.svc.Create(ctx, owner, ashaRao())
		require.NoError(t, err)
		drafts = append(drafts, o)
	}
	newest := drafts[2]
	_, err := f.storage.Put(ctx, newest.DocumentKey(), []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	res, err := NewReconciler(f.store, f.storage, nil, zerolog.Nop()).Run(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, ReconcileResult{Scanned: 3, Promoted: 1}, res)
	assert.Equal(t, models.StatusGenerated, f.store.get(newest.ID).Status)
	assert.Equal(t, models.StatusDraft, f.store.get(drafts[0].ID).Status)
	assert.Equal(t, models.StatusDraft, f.store.get(drafts[1].ID).Status)
}
