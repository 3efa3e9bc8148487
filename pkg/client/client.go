// Package client is a small Go client for the charter API. A Session is an
// explicit value: Login attaches one, Logout drops it, and every protected
// call sends its token.
package client

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
	"sync"
	"time"

	"connection-travels/internal/domain/models"
)

var ErrNoSession = errors.New("client: no active session")

// Session is what Login returns.
type Session struct {
	Token        string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

// APIError carries the server's error body.
type APIError struct {
	Status    int
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	session *Session
}

// New returns a client for baseURL (for example http://localhost:8080). A nil
// httpClient gets a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Session returns the active session, if any.
func (c *Client) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// UseSession attaches a session obtained elsewhere.
func (c *Client) UseSession(s Session) {
	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()
}

func (c *Client) Logout() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &s); err != nil {
		return Session{}, err
	}
	c.UseSession(s)
	return s, nil
}

func (c *Client) token() (string, error) {
	s, ok := c.Session()
	if !ok || s.Token == "" {
		return "", ErrNoSession
	}
	return s.Token, nil
}

func (c *Client) authed(ctx context.Context, method, path string, in, out any) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, tok, in, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// ListBuses is public and works without a session.
func (c *Client) ListBuses(ctx context.Context) ([]models.Bus, error) {
	var out []models.Bus
	err := c.do(ctx, http.MethodGet, "/api/buses", "", nil, &out)
	return out, err
}

func (c *Client) RequestQuote(ctx context.Context, in models.QuoteInput) (models.CustomerBookingView, error) {
	var out models.CustomerBookingView
	err := c.authed(ctx, http.MethodPost, "/api/bookings", in, &out)
	return out, err
}

func (c *Client) MyBookings(ctx context.Context) ([]models.CustomerBookingView, error) {
	var out []models.CustomerBookingView
	err := c.authed(ctx, http.MethodGet, "/api/bookings", nil, &out)
	return out, err
}

func (c *Client) MyBooking(ctx context.Context, id string) (models.CustomerBookingView, error) {
	var out models.CustomerBookingView
	err := c.authed(ctx, http.MethodGet, "/api/bookings/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ConfirmBooking(ctx context.Context, id string) (models.CustomerBookingView, error) {
	var out models.CustomerBookingView
	err := c.authed(ctx, http.MethodPost, "/api/bookings/"+url.PathEscape(id)+"/confirm", nil, &out)
	return out, err
}

func (c *Client) QuoteRequests(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	err := c.authed(ctx, http.MethodGet, "/api/admin/quotes", nil, &out)
	return out, err
}

func (c *Client) Negotiate(ctx context.Context, bookingID string, patch models.NegotiationPatch) (models.Booking, error) {
	var out models.Booking
	err := c.authed(ctx, http.MethodPatch, "/api/admin/quotes/"+url.PathEscape(bookingID), patch, &out)
	return out, err
}

func (c *Client) LockOwnerPayout(ctx context.Context, bookingID string, price float64) (models.Booking, error) {
	var out models.Booking
	body := map[string]float64{"ownerPayoutPrice": price}
	err := c.authed(ctx, http.MethodPost, "/api/admin/quotes/"+url.PathEscape(bookingID)+"/lock-owner", body, &out)
	return out, err
}

func (c *Client) LockUserPrice(ctx context.Context, bookingID string, price float64) (models.Booking, error) {
	var out models.Booking
	body := map[string]float64{"userFinalPrice": price}
	err := c.authed(ctx, http.MethodPost, "/api/admin/quotes/"+url.PathEscape(bookingID)+"/lock-user", body, &out)
	return out, err
}

func (c *Client) OwnerBookings(ctx context.Context, ownerID string) ([]models.OwnerBookingView, error) {
	var out []models.OwnerBookingView
	err := c.authed(ctx, http.MethodGet, "/api/owners/"+url.PathEscape(ownerID)+"/bookings", nil, &out)
	return out, err
}
