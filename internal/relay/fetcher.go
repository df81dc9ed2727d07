package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrPDFTooLarge is returned when the document exceeds the configured limit
var ErrPDFTooLarge = errors.New("pdf exceeds size limit")

// PDFFetcher downloads the document referenced by a send request
type PDFFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewPDFFetcher creates a fetcher with a per-request timeout and a size cap
func NewPDFFetcher(timeout time.Duration, maxBytes int64) *PDFFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &PDFFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch returns the body of pdfURL. Non-2xx answers are errors.
func (f *PDFFetcher) Fetch(ctx context.Context, pdfURL string) ([]byte, error) {
	u, err := url.Parse(pdfURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid pdf url %q", pdfURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, ErrPDFTooLarge
	}
	return data, nil
}
