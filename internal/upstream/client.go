// Package upstream talks to the booking REST backend that owns venues, courts and bookings.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxBodySize = 4 << 20

var ErrNotFound = errors.New("upstream resource not found")

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.Code, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// BookingSlot is one selected slot forwarded to POST /bookings.
type BookingSlot struct {
	SlotID    string `json:"slotId"`
	CourtID   string `json:"courtId"`
	CourtName string `json:"courtName"`
	Time      string `json:"time"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
	Price     int64  `json:"price"`
}

type BookingRequest struct {
	VenueID    string        `json:"venueId"`
	Date       string        `json:"date"`
	Slots      []BookingSlot `json:"slots"`
	TotalPrice int64         `json:"totalPrice"`
}

// BookingResult is the backend's answer to a booking creation.
// ExpiresAt is the end of the payment hold, when the backend sends one.
type BookingResult struct {
	ID        string     `json:"id"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a backend client. rps <= 0 disables throttling.
func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// FetchAvailability returns the raw body of GET /venues/{venueID}/availability?date=YYYY-MM-DD.
func (c *Client) FetchAvailability(ctx context.Context, venueID string, date time.Time) ([]byte, error) {
	q := url.Values{}
	q.Set("date", date.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/venues/%s/availability?%s", c.baseURL, url.PathEscape(venueID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build availability request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// CreateBooking forwards a checkout hand-off to POST /bookings on behalf of the user.
func (c *Client) CreateBooking(ctx context.Context, token string, payload BookingRequest) (*BookingResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode booking request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build booking request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result BookingResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode booking response failed: %w", err)
	}
	return &result, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("upstream rate limit wait failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read upstream response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
