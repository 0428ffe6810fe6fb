package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/timeline/pkg/logger"
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Do sends a request with an optional JSON body and returns the status and
// the full response body.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

type submission struct {
	path string
	id   string
	body any
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeFailed
)

// submitBatch posts every item of b through a pool of cfg.Workers
// submitters. Items rejected with 429 are retried with a linear backoff.
func submitBatch(ctx context.Context, client *HTTPClient, cfg *Config, b Batch, stats *Stats) error {
	log := logger.Get().Named("seed")
	total := len(b.Events) + len(b.Spans)
	log.Info(ctx, "submitting items", logger.Int("items", total), logger.Int("workers", cfg.Workers))

	var (
		submitted int64
		created   int64
		retried   int64
		failed    int64
	)

	work := make(chan submission, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				res, retries := submitOne(ctx, client, s, cfg.Retries)
				atomic.AddInt64(&submitted, 1)
				atomic.AddInt64(&retried, int64(retries))
				switch res {
				case outcomeCreated:
					atomic.AddInt64(&created, 1)
				default:
					atomic.AddInt64(&failed, 1)
					log.Debug(ctx, "item rejected", logger.String("path", s.path), logger.String("id", s.id))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range b.Events {
			select {
			case <-ctx.Done():
				return
			case work <- submission{path: "/events", id: b.Events[i].ID, body: b.Events[i]}:
			}
		}
		for i := range b.Spans {
			select {
			case <-ctx.Done():
				return
			case work <- submission{path: "/timespans", id: b.Spans[i].ID, body: b.Spans[i]}:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Created = int(atomic.LoadInt64(&created))
	stats.Retried = int(atomic.LoadInt64(&retried))
	stats.Failed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "submission completed",
		logger.Int("created", stats.Created),
		logger.Int("retried", stats.Retried),
		logger.Int("failed", stats.Failed))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("submission interrupted: %w", err)
	}
	return nil
}

// submitOne posts a single item and reports the outcome and how many
// retries it took.
func submitOne(ctx context.Context, client *HTTPClient, s submission, attempts int) (outcome, int) {
	attempts = max(attempts, 1)
	for try := 0; try < attempts; try++ {
		status, _, err := client.Do(ctx, http.MethodPost, s.path, s.body)
		switch {
		case err != nil:
			return outcomeFailed, try
		case status == http.StatusCreated:
			return outcomeCreated, try
		case status != http.StatusTooManyRequests:
			return outcomeFailed, try
		}
		select {
		case <-ctx.Done():
			return outcomeFailed, try
		case <-time.After(retryBackoff * time.Duration(try+1)):
		}
	}
	return outcomeFailed, attempts - 1
}
