package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/app/services"
	"github.com/yigit/offerdesk/internal/pkg/filestorage"
)

func TestServer_ServesUntilCancelled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	s := New("test", "127.0.0.1:0", handler, time.Second, time.Second, zerolog.Nop())

	var workerStopped, closed atomic.Bool
	s.Go(func(ctx context.Context) {
		<-ctx.Done()
		workerStopped.Store(true)
	})
	s.OnClose(func() { closed.Store(true) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, workerStopped.Load())
	assert.True(t, closed.Load())
}

func TestServer_RunFailsOnBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := New("test", ln.Addr().String(), http.NotFoundHandler(), time.Second, time.Second, zerolog.Nop())
	assert.Error(t, s.Run(context.Background()))
}

type draftStore struct {
	drafts   []*models.OfferLetter
	promoted []int64
}

func (d *draftStore) ListDrafts(_ context.Context, afterID int64, limit int) ([]*models.OfferLetter, error) {
	var out []*models.OfferLetter
	for _, o := range d.drafts {
		if o.ID > afterID && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}

func (d *draftStore) UpdateDocument(_ context.Context, id int64, pdfURL string) (*models.OfferLetter, error) {
	d.promoted = append(d.promoted, id)
	return &models.OfferLetter{ID: id, PdfURL: &pdfURL, Status: models.StatusGenerated}, nil
}

func TestStartupReconcile_PromotesStoredDrafts(t *testing.T) {
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "http://localhost:8080/documents")
	require.NoError(t, err)

	store := &draftStore{drafts: []*models.OfferLetter{
		{ID: 1, RefNo: "OL000001", Status: models.StatusDraft},
		{ID: 2, RefNo: "OL000002", Status: models.StatusDraft},
	}}
	_, err = storage.Put(context.Background(), "OL000002.pdf", []byte("%PDF"), filestorage.ContentTypePDF)
	require.NoError(t, err)

	reconciler := services.NewReconciler(store, storage, nil, zerolog.Nop())
	startupReconcile(reconciler, 1, zerolog.Nop())(context.Background())

	assert.Equal(t, []int64{2}, store.promoted)
}
