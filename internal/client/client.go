// Package client talks to the shortener's JSON API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned when the server has no link for a code.
var ErrNotFound = errors.New("short link not found")

// Link is a short link as returned by the API.
type Link struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	ShortURL    string    `json:"shortUrl"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Health is the server's health report.
type Health struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Client calls one shortener instance.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Shorten creates a short link for originalURL.
func (c *Client) Shorten(ctx context.Context, originalURL string) (*Link, error) {
	link := &Link{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"url": originalURL}).
		SetResult(link).
		SetError(&problem{}).
		Post("/api/links")
	if err != nil {
		return nil, fmt.Errorf("shorten: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("shorten: %w", apiError(resp))
	}

	return link, nil
}

// Lookup fetches the link stored under code.
func (c *Client) Lookup(ctx context.Context, code string) (*Link, error) {
	link := &Link{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("code", code).
		SetResult(link).
		SetError(&problem{}).
		Get("/api/links/{code}")
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", code, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.IsError() {
		return nil, fmt.Errorf("lookup %s: %w", code, apiError(resp))
	}

	return link, nil
}

// Health fetches the server's health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	health := &Health{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(health).
		Get("/health")
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("health: %w", apiError(resp))
	}

	return health, nil
}

func apiError(resp *resty.Response) error {
	if p, ok := resp.Error().(*problem); ok && p.Detail != "" {
		return fmt.Errorf("%s: %s", resp.Status(), p.Detail)
	}

	return errors.New(resp.Status())
}
