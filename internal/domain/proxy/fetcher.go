package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultContentType = "application/octet-stream"

// Object is an evidence file body; the caller closes Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Fetcher downloads evidence objects that pass the guard.
type Fetcher struct {
	guard  *OriginGuard
	client *http.Client
}

func NewFetcher(guard *OriginGuard, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{
			Timeout: 60 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if _, err := guard.Check(req.URL.String()); err != nil {
					return err
				}
				if len(via) >= 5 {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}
				return nil
			},
		}
	}
	return &Fetcher{guard: guard, client: client}
}

func (f *Fetcher) Guard() *OriginGuard {
	return f.guard
}

// Fetch checks raw against the guard and opens the object. Non-2xx
// responses are returned as *UpstreamError.
func (f *Fetcher) Fetch(ctx context.Context, raw string) (*Object, error) {
	u, err := f.guard.Check(raw)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &UpstreamError{Status: resp.StatusCode, Text: http.StatusText(resp.StatusCode)}
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultContentType
	}
	return &Object{Body: resp.Body, ContentType: ct, ContentLength: resp.ContentLength}, nil
}
