// Package cdek wraps the CDEK courier API: OAuth token management, city
// code resolution and pickup-point (PVZ) listing.
package cdek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"teashop/core/logger"
	"teashop/internal/models"
)

// ErrCityNotFound is returned when the API knows no city by that name.
var ErrCityNotFound = errors.New("cdek: city not found")

const (
	defaultBaseURL  = "https://api.cdek.ru/v2"
	defaultPageSize = 1000
	defaultTimeout  = 10 * time.Second

	// tokenSafetyMargin shortens the advertised token lifetime so a token
	// is never presented moments before it expires server-side.
	tokenSafetyMargin = 60 * time.Second
)

// Config carries CDEK API credentials and tuning.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	PageSize     int
	Timeout      time.Duration
}

// Client is a process-wide CDEK API client. The access token is cached and
// refreshed lazily; the refresh is guarded by a mutex so concurrent callers
// share a single token request.
type Client struct {
	cfg  Config
	http *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// New constructs a Client, filling zero config fields with defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiresAt) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("cdek: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cdek: token request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cdek: token status %s", resp.Status)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("cdek: decode token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("cdek: empty access token")
	}

	c.token = payload.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - tokenSafetyMargin)
	logger.Info(ctx, "cdek", "token.refresh",
		slog.String("status", "ok"),
		slog.Int("expires_in", payload.ExpiresIn),
	)
	return c.token, nil
}

// ResolveCity resolves a city name to its numeric CDEK code.
// Returns ErrCityNotFound when the lookup succeeds but matches nothing.
func (c *Client) ResolveCity(ctx context.Context, name string) (int, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return 0, err
	}

	q := url.Values{
		"country_code": {"RU"},
		"city":         {strings.TrimSpace(name)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/location/cities?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("cdek: build city request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("cdek: city request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("cdek: city status %s", resp.Status)
	}

	var cities []struct {
		Code int `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cities); err != nil {
		return 0, fmt.Errorf("cdek: decode cities: %w", err)
	}
	if len(cities) == 0 {
		return 0, ErrCityNotFound
	}

	logger.Debug(ctx, "cdek", "city.resolve",
		slog.String("status", "ok"),
		slog.Int("city_code", cities[0].Code),
	)
	return cities[0].Code, nil
}

// PickupPoints lists CDEK pickup points for a city code. The result is
// bounded by the configured page size, which is large enough to cover any
// practical city in one call.
func (c *Client) PickupPoints(ctx context.Context, cityCode int) ([]models.PickupPoint, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{
		"city_code":    {strconv.Itoa(cityCode)},
		"country_code": {"RU"},
		"type":         {"PVZ"},
		"lang":         {"rus"},
		"size":         {strconv.Itoa(c.cfg.PageSize)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/deliverypoints?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("cdek: build deliverypoints request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cdek: deliverypoints request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cdek: deliverypoints status %s", resp.Status)
	}

	var points []models.PickupPoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, fmt.Errorf("cdek: decode deliverypoints: %w", err)
	}
	for i := range points {
		points[i].Address = strings.TrimSpace(points[i].Address)
	}

	logger.Info(ctx, "cdek", "deliverypoints.list",
		slog.String("status", "ok"),
		slog.Int("city_code", cityCode),
		slog.Int("pvz_total", len(points)),
	)
	return points, nil
}
