// Package movies is the movie browser's API client. It uses a resty client
// with the interceptor installed as global request hooks.
package movies

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/appshell-dev/appshell/internal/cli/interceptor"
)

// API paths, relative to the /api namespace the interceptor adds
const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathPage     = "/movies/movies/page"
	pathDetail   = "/movies/"
)

// ErrInvalidCredentials is returned by Login when the server rejects the username/password
var ErrInvalidCredentials = errors.New("invalid username or password")

// Movie is one catalog entry
type Movie struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Year     int     `json:"year"`
	Director string  `json:"director"`
	Rating   float64 `json:"rating"`
	Summary  string  `json:"summary"`
	Poster   string  `json:"poster,omitempty"`
}

// Page is one page of the catalog
type Page struct {
	Records []Movie `json:"records"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	Size    int     `json:"size"`
}

// Client talks to the movies API
type Client struct {
	rc *resty.Client
}

// New creates a client with ic attached to a fresh resty client
func New(ic *interceptor.Interceptor) *Client {
	return NewWithResty(resty.New(), ic)
}

// NewWithResty attaches ic to rc. rc must not carry a base URL.
func NewWithResty(rc *resty.Client, ic *interceptor.Interceptor) *Client {
	rc.SetHeader("Accept", "application/json")
	ic.Attach(rc)
	return &Client{rc: rc}
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login authenticates and returns the token and username. Exempt from the auth guard.
func (c *Client) Login(ctx context.Context, username, password string) (token, name string, err error) {
	var out loginResponse
	resp, err := c.rc.R().
		SetContext(interceptor.WithExempt(ctx)).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		Post(pathLogin)
	if err != nil {
		return "", "", fmt.Errorf("login failed: %w", err)
	}
	if interceptor.IsAuthStatus(resp.StatusCode()) {
		return "", "", ErrInvalidCredentials
	}
	if err := statusError(resp); err != nil {
		return "", "", fmt.Errorf("login failed: %w", err)
	}

	return out.Token, out.Username, nil
}

// Register creates an account. Exempt from the auth guard like Login.
func (c *Client) Register(ctx context.Context, username, password string) error {
	resp, err := c.rc.R().
		SetContext(interceptor.WithExempt(ctx)).
		SetBody(map[string]string{"username": username, "password": password}).
		Post(pathRegister)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if err := statusError(resp); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// List returns one page of movies. page is 1-based.
func (c *Client) List(ctx context.Context, page, size int) (*Page, error) {
	var out Page
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page": strconv.Itoa(page),
			"size": strconv.Itoa(size),
		}).
		SetResult(&out).
		Get(pathPage)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp); err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return &out, nil
}

// Detail returns one movie
func (c *Client) Detail(ctx context.Context, id string) (*Movie, error) {
	var out Movie
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get(pathDetail + url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if err := statusError(resp); err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return &out, nil
}

// WebViewResult is what an embedded web page fetched, whatever the status
type WebViewResult struct {
	URL    string
	Status int
	Body   []byte
}

// WebView fetches a resource on behalf of an embedded web page. Such requests
// are exempt from the auth guard: a 401/403 is shown to the page, the session stays.
func (c *Client) WebView(ctx context.Context, path string) (*WebViewResult, error) {
	resp, err := c.rc.R().
		SetContext(interceptor.WithExempt(ctx)).
		Get(path)
	if err != nil {
		return nil, err
	}
	return &WebViewResult{
		URL:    resp.Request.URL,
		Status: resp.StatusCode(),
		Body:   resp.Body(),
	}, nil
}

func statusError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	return &interceptor.StatusError{
		Status: resp.StatusCode(),
		URL:    resp.Request.URL,
		Body:   resp.String(),
	}
}
