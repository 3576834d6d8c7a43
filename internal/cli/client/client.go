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
	"strconv"
	"time"

	"github.com/appshell-dev/appshell/internal/cli/interceptor"
)

// ErrInvalidCredentials is returned by Login when the server rejects the username/password
var ErrInvalidCredentials = errors.New("invalid username or password")

// Client represents an HTTP client for the notes API. Every request goes
// through the interceptor transport, so paths are relative ("/notes") and
// credentials are attached from the token store.
type Client struct {
	httpClient *http.Client
}

// New creates a new API client dispatching through ic on top of base
func New(ic *interceptor.Interceptor, base http.RoundTripper) *Client {
	return &Client{
		httpClient: interceptor.NewHTTPClient(ic, base),
	}
}

// SetHTTPClient sets a custom HTTP client. Its transport should be an interceptor transport.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login authenticates the user and returns a JWT token. The call is exempt from
// the 401/403 guard: a rejected login is a wrong password, not an expired session.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var loginResp LoginResponse
	err := c.do(interceptor.WithExempt(ctx), http.MethodPost, "/auth/login",
		LoginRequest{Username: username, Password: password}, &loginResp)
	if err != nil {
		var statusErr *interceptor.StatusError
		if errors.As(err, &statusErr) && interceptor.IsAuthStatus(statusErr.Status) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return &loginResp, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, username, password string) error {
	err := c.do(interceptor.WithExempt(ctx), http.MethodPost, "/auth/register",
		LoginRequest{Username: username, Password: password}, nil)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// User is the authenticated account
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Me returns the account the stored token belongs to
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Note represents a note
type Note struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsPinned   bool      `json:"is_pinned"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NoteInput is the writable part of a note
type NoteInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"category_id,omitempty"` // empty = uncategorised
}

// noteEnvelope matches the {"success": true, "note": {...}} write responses
type noteEnvelope struct {
	Success bool `json:"success"`
	Note    Note `json:"note"`
}

// ListNotes returns the current user's notes
func (c *Client) ListNotes(ctx context.Context, archived bool) ([]Note, error) {
	path := "/notes?archived=" + strconv.FormatBool(archived)

	var notes []Note
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// SearchNotes matches keyword against title and content, optionally within one category
func (c *Client) SearchNotes(ctx context.Context, keyword, categoryID string, archived bool) ([]Note, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("archived", strconv.FormatBool(archived))
	if categoryID != "" {
		q.Set("categoryId", categoryID)
	}

	var notes []Note
	if err := c.do(ctx, http.MethodGet, "/notes/search?"+q.Encode(), nil, &notes); err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	return notes, nil
}

// NotesInCategory lists the notes filed under one category
func (c *Client) NotesInCategory(ctx context.Context, categoryID string, archived bool) ([]Note, error) {
	path := "/notes/category/" + url.PathEscape(categoryID) + "?archived=" + strconv.FormatBool(archived)

	var notes []Note
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// GetNote returns a single note
func (c *Client) GetNote(ctx context.Context, id string) (*Note, error) {
	var note Note
	if err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil, &note); err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

// CreateNote creates a new note
func (c *Client) CreateNote(ctx context.Context, in NoteInput) (*Note, error) {
	var env noteEnvelope
	if err := c.do(ctx, http.MethodPost, "/notes", in, &env); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return &env.Note, nil
}

// UpdateNote replaces a note's title and content
func (c *Client) UpdateNote(ctx context.Context, id string, in NoteInput) (*Note, error) {
	var env noteEnvelope
	if err := c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), in, &env); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return &env.Note, nil
}

// DeleteNote deletes a note by ID
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// PinNote pins or unpins a note
func (c *Client) PinNote(ctx context.Context, id string, pinned bool) error {
	body := map[string]bool{"isPinned": pinned}
	if err := c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id)+"/pin", body, nil); err != nil {
		return fmt.Errorf("failed to pin note: %w", err)
	}
	return nil
}

// ArchiveNote archives or restores a note
func (c *Client) ArchiveNote(ctx context.Context, id string, archived bool) error {
	body := map[string]bool{"isArchived": archived}
	if err := c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id)+"/archive", body, nil); err != nil {
		return fmt.Errorf("failed to archive note: %w", err)
	}
	return nil
}

// Category groups notes
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type categoryEnvelope struct {
	Success  bool     `json:"success"`
	Category Category `json:"category"`
}

// ListCategories returns the current user's categories by name
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a single category
func (c *Client) GetCategory(ctx context.Context, id string) (*Category, error) {
	var category Category
	if err := c.do(ctx, http.MethodGet, "/categories/"+url.PathEscape(id), nil, &category); err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// CreateCategory creates a category
func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	var env categoryEnvelope
	if err := c.do(ctx, http.MethodPost, "/categories", map[string]string{"name": name}, &env); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &env.Category, nil
}

// RenameCategory changes a category's name
func (c *Client) RenameCategory(ctx context.Context, id, name string) (*Category, error) {
	var env categoryEnvelope
	if err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), map[string]string{"name": name}, &env); err != nil {
		return nil, fmt.Errorf("failed to rename category: %w", err)
	}
	return &env.Category, nil
}

// DeleteCategory deletes a category; its notes become uncategorised
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// do sends one request and decodes a successful JSON response into out.
// Unsuccessful statuses come back as *interceptor.StatusError; 401/403 have
// already been turned into *interceptor.AuthExpiredError by the transport.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := interceptor.CheckResponse(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
