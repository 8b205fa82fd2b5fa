// Package dataset loads the pollution table from a local file or over HTTP.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
)

// errRetryable marks remote fetch failures worth another attempt.
var errRetryable = errors.New("fetch dataset")

// Source reads the dataset from a file path or an http(s) URL.
type Source struct {
	location   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewSource creates a dataset source. The timeout bounds remote fetches only.
func NewSource(location string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Source {
	return &Source{
		location:   location,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,

		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// Location returns the configured file path or URL.
func (s *Source) Location() string {
	return s.location
}

// Load reads and parses the whole dataset. Any failure to obtain or parse the
// table is returned as a *domain.LoadError.
func (s *Source) Load(ctx context.Context) ([]domain.Record, domain.LoadStats, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, domain.LoadStats{}, &domain.LoadError{Source: s.location, Err: err}
	}
	defer rc.Close()

	records, stats, err := domain.ParseDataset(rc)
	if err != nil {
		var loadErr *domain.LoadError
		if errors.As(err, &loadErr) && loadErr.Source == "" {
			loadErr.Source = s.location
		}
		return nil, stats, err
	}

	s.metrics.DatasetRows.WithLabelValues("loaded").Add(float64(stats.Records))
	s.metrics.DatasetRows.WithLabelValues("skipped").Add(float64(stats.SkippedRows))
	s.logger.Info("dataset loaded",
		"source", s.location,
		"rows", stats.Rows,
		"records", stats.Records,
		"skipped", stats.SkippedRows,
	)
	return records, stats, nil
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if !isRemote(s.location) {
		f, err := os.Open(s.location)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errRetryable, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: status %d: %s", errRetryable, resp.StatusCode, body)
		}
		return nil, fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, body)
	}
	return resp.Body, nil
}

func isRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
