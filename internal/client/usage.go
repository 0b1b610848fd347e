// Package client implements the usage fetch capability consumed by the
// analytics pipeline. The base address and credential source are injected so
// tests and alternative deployments can substitute them.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"example.com/litterbox/internal/domain"
)

var (
	// ErrTransport indicates the request never produced a response.
	ErrTransport = errors.New("usage request failed")
	// ErrServer indicates a non-success status from the usage endpoint.
	ErrServer = errors.New("usage service error")
	// ErrMalformedPayload indicates a success response that could not be
	// decoded into complete usage records.
	ErrMalformedPayload = errors.New("malformed usage payload")
)

// TokenProvider supplies the bearer credential for outgoing requests.
type TokenProvider func(ctx context.Context) (string, error)

// Option configures optional behaviour for the UsageClient.
type Option func(*UsageClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *UsageClient) { c.httpClient = httpClient }
}

// UsageClient fetches litterbox visit records over HTTP.
type UsageClient struct {
	baseURL    string
	token      TokenProvider
	httpClient *http.Client
}

// NewUsageClient constructs a client with sane defaults. The client's
// timeout is the pipeline's only fetch deadline; a timeout surfaces as a
// transport error like any other network failure.
func NewUsageClient(baseURL string, token TokenProvider, opts ...Option) *UsageClient {
	c := &UsageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUsage retrieves visit records for the window, expanding the calendar
// dates to the inclusive timestamp range [start 00:00:00, end 23:59:59].
func (c *UsageClient) FetchUsage(ctx context.Context, window domain.QueryWindow, limit int) ([]domain.UsageRecord, error) {
	endpoint := fmt.Sprintf("%s/v1/cats/%s/litterbox-usage", c.baseURL, url.PathEscape(window.SubjectID))

	query := url.Values{}
	query.Set("start_date", window.Start.Format("2006-01-02")+"T00:00:00")
	query.Set("end_date", window.End.Format("2006-01-02")+"T23:59:59")
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordFetch("transport_error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		recordFetch("server_error", time.Since(start))
		var payload struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil && payload.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrServer, payload.Error)
		}
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	}

	var payload struct {
		UsageData []wireRecord `json:"usage_data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		recordFetch("parse_error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	records := make([]domain.UsageRecord, 0, len(payload.UsageData))
	for i, raw := range payload.UsageData {
		record, err := raw.toDomain()
		if err != nil {
			recordFetch("parse_error", time.Since(start))
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedPayload, i, err)
		}
		records = append(records, record)
	}

	recordFetch("success", time.Since(start))
	return records, nil
}

// wireRecord uses pointers for required fields so missing keys are detected
// rather than silently defaulting to zero values.
type wireRecord struct {
	ID              string     `json:"id"`
	EnterTime       *time.Time `json:"enter_time"`
	ExitTime        *time.Time `json:"exit_time"`
	DurationMinutes *float64   `json:"duration_minutes"`
	CatWeight       *float64   `json:"cat_weight"`
	DeviceName      string     `json:"device_name"`
	LitterboxName   string     `json:"litterbox_name"`
}

func (r wireRecord) toDomain() (domain.UsageRecord, error) {
	switch {
	case r.ID == "":
		return domain.UsageRecord{}, errors.New("missing id")
	case r.EnterTime == nil:
		return domain.UsageRecord{}, errors.New("missing enter_time")
	case r.ExitTime == nil:
		return domain.UsageRecord{}, errors.New("missing exit_time")
	case r.DurationMinutes == nil:
		return domain.UsageRecord{}, errors.New("missing duration_minutes")
	case r.CatWeight == nil:
		return domain.UsageRecord{}, errors.New("missing cat_weight")
	}
	return domain.UsageRecord{
		ID:              r.ID,
		EnterTime:       *r.EnterTime,
		ExitTime:        *r.ExitTime,
		DurationMinutes: *r.DurationMinutes,
		CatWeight:       *r.CatWeight,
		DeviceName:      r.DeviceName,
		LitterboxName:   r.LitterboxName,
	}, nil
}
