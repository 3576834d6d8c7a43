// Package interceptor attaches stored credentials to outgoing API requests and
// turns 401/403 responses into a cleared session plus a redirect to login.
package interceptor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/appshell-dev/appshell/internal/cli/endpoint"
	"github.com/appshell-dev/appshell/internal/cli/session"
)

const bearerPrefix = "Bearer "

// Navigator is the part of a navigation runtime the response guard needs
type Navigator interface {
	OnLogin() bool
	ToLogin()
}

// Interceptor holds the shared state both request flavours consult
type Interceptor struct {
	store  session.Store
	env    endpoint.Environment
	nav    Navigator
	logger zerolog.Logger
}

// New creates an interceptor. nav may be nil when no navigation runtime exists.
func New(store session.Store, env endpoint.Environment, nav Navigator, logger zerolog.Logger) *Interceptor {
	return &Interceptor{
		store:  store,
		env:    env,
		nav:    nav,
		logger: logger,
	}
}

// Environment returns the environment requests are resolved against
func (i *Interceptor) Environment() endpoint.Environment {
	return i.env
}

// Store returns the token store
func (i *Interceptor) Store() session.Store {
	return i.store
}

// ResolveURL applies the base URL and API namespace to a relative path
func (i *Interceptor) ResolveURL(raw string) string {
	return i.env.Resolve(raw)
}

// Authorize sets the bearer header when a token is stored and leaves h untouched otherwise
func (i *Interceptor) Authorize(h http.Header) {
	token, ok := i.store.Get(session.KeyToken)
	if !ok || token == "" {
		return
	}
	h.Set("Authorization", bearerPrefix+token)
}

// Prepare returns a copy of req with its URL resolved and credentials attached
func (i *Interceptor) Prepare(req *http.Request) (*http.Request, error) {
	original := req.URL.String()

	target, err := i.env.DispatchURL(original)
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.URL = target
	out.Host = ""
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	i.Authorize(out.Header)

	i.logger.Debug().
		Str("method", req.Method).
		Str("original_url", original).
		Str("url", target.String()).
		Msg("Processed request URL")

	return out, nil
}

// HandleResponse is the HTTP-triggered guard. It consumes the exempt mark of
// ctx, logs unsuccessful statuses, and on 401/403 clears the session and
// redirects to login unless already there. It returns an *AuthExpiredError in
// that case and nil otherwise.
func (i *Interceptor) HandleResponse(ctx context.Context, status int, url string) error {
	if consumeExempt(ctx) {
		i.logger.Debug().Int("status", status).Str("url", url).Msg("Skipping auth handling for exempt request")
		return nil
	}

	if status < http.StatusBadRequest {
		return nil
	}

	if !IsAuthStatus(status) {
		i.logger.Warn().Int("status", status).Str("url", url).Msg("Request returned error status")
		return nil
	}

	i.logger.Warn().Int("status", status).Str("url", url).Msg("Authentication rejected, clearing session")

	if err := session.Clear(i.store); err != nil {
		i.logger.Error().Err(err).Msg("Failed to clear session")
	}

	if i.nav != nil && !i.nav.OnLogin() {
		i.nav.ToLogin()
	}

	return &AuthExpiredError{Status: status, URL: url}
}

// HandleFailure is called when a request never produced a response
func (i *Interceptor) HandleFailure(ctx context.Context, url string, err error) {
	consumeExempt(ctx)
	i.logger.Error().Err(err).Str("url", url).Msg("Request failed")
}

// Transport is an http.RoundTripper running every request through the interceptor.
// It dispatches exactly once; there is no retry, timeout or backoff here.
type Transport struct {
	Base        http.RoundTripper
	Interceptor *Interceptor
}

// NewTransport wraps base, or http.DefaultTransport when base is nil
func NewTransport(i *Interceptor, base http.RoundTripper) *Transport {
	return &Transport{Base: base, Interceptor: i}
}

// NewHTTPClient returns an http.Client whose transport is the interceptor
func NewHTTPClient(i *Interceptor, base http.RoundTripper) *http.Client {
	return &http.Client{Transport: NewTransport(i, base)}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out, err := t.Interceptor.Prepare(req)
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		t.Interceptor.HandleFailure(ctx, req.URL.String(), err)
		return nil, err
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		t.Interceptor.HandleFailure(ctx, out.URL.String(), err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// http.Client calls back in for the next hop; only the final response is guarded
	if isFollowedRedirect(resp) {
		return resp, nil
	}

	if err := t.Interceptor.HandleResponse(ctx, resp.StatusCode, out.URL.String()); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// isFollowedRedirect reports whether http.Client will follow resp to another hop
func isFollowedRedirect(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return resp.Header.Get("Location") != ""
	}
	return false
}
