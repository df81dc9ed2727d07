package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "docs")
	ls, err := NewLocalStorage(dir, "http://localhost:8080/documents/")
	require.NoError(t, err)
	return ls, dir
}

func TestLocalStorage_PutOverwrites(t *testing.T) {
	ls, dir := newLocal(t)
	ctx := context.Background()

	url, err := ls.Put(ctx, "OL482913.pdf", []byte("first"), ContentTypePDF)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/documents/OL482913.pdf", url)

	_, err = ls.Put(ctx, "OL482913.pdf", []byte("second"), ContentTypePDF)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "OL482913.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLocalStorage_ExistsAndDelete(t *testing.T) {
	ls, _ := newLocal(t)
	ctx := context.Background()

	ok, err := ls.Exists(ctx, "OL000001.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ls.Put(ctx, "OL000001.pdf", []byte("%PDF"), ContentTypePDF)
	require.NoError(t, err)

	ok, err = ls.Exists(ctx, "OL000001.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, ls.Delete(ctx, "OL000001.pdf"))
	require.NoError(t, ls.Delete(ctx, "OL000001.pdf"), "deleting twice is fine")

	ok, err = ls.Exists(ctx, "OL000001.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_RejectsPathKeys(t *testing.T) {
	ls, _ := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape.pdf", "a/b.pdf", `a\b.pdf`, ".hidden"} {
		_, err := ls.Put(ctx, key, []byte("x"), ContentTypePDF)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.ErrorIs(t, ls.Delete(ctx, key), ErrInvalidKey, key)
	}
}

func TestLocalStorage_PutHonoursCancelledContext(t *testing.T) {
	ls, _ := newLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ls.Put(ctx, "OL000002.pdf", []byte("x"), ContentTypePDF)
	assert.ErrorIs(t, err, context.Canceled)
}
