// Package endpoint selects the API base URL for the current build environment
// and turns relative request paths into dispatchable URLs.
package endpoint

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Platform is the runtime the shell is built for
type Platform string

const (
	PlatformH5  Platform = "h5"  // browser
	PlatformApp Platform = "app" // device
)

// Mode is the build mode
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// DefaultAPIPrefix is the namespace every API path lives under
const DefaultAPIPrefix = "/api"

// Environment variables that override the configured environment
const (
	EnvPlatform   = "APPSHELL_PLATFORM"
	EnvMode       = "APPSHELL_MODE"
	EnvBaseURL    = "APPSHELL_BASE_URL"
	EnvPageOrigin = "APPSHELL_PAGE_ORIGIN"
)

// Environment describes where requests go
type Environment struct {
	Platform Platform
	Mode     Mode

	// BaseURL is the literal API origin used outside local web development
	BaseURL string

	// PageOrigin is the dev server origin relative URLs are dispatched against
	// when BaseURL is not in effect. It plays the part of the page's own origin
	// in a browser, which proxies /api/* to the backend.
	PageOrigin string

	// APIPrefix defaults to /api
	APIPrefix string
}

// IsLocalWebDev reports whether requests rely on the dev server proxy
func (e Environment) IsLocalWebDev() bool {
	return e.Platform == PlatformH5 && e.Mode == ModeDevelopment
}

// ResolvedBaseURL returns "" in local web development, the configured base URL otherwise
func (e Environment) ResolvedBaseURL() string {
	if e.IsLocalWebDev() {
		return ""
	}
	return strings.TrimRight(e.BaseURL, "/")
}

func (e Environment) apiPrefix() string {
	if e.APIPrefix == "" {
		return DefaultAPIPrefix
	}
	return "/" + strings.Trim(e.APIPrefix, "/")
}

// Resolve rewrites a relative path into {baseURL}{apiPrefix}{path}.
// Absolute http(s) URLs are returned unchanged.
func (e Environment) Resolve(raw string) string {
	if IsAbsolute(raw) {
		return raw
	}

	urlPath := raw
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}

	prefix := e.apiPrefix()
	if !hasPathPrefix(urlPath, prefix) {
		urlPath = prefix + urlPath
	}

	return e.ResolvedBaseURL() + urlPath
}

// DispatchURL resolves raw and, when the result is still relative, anchors it
// on the page origin so it can actually be sent.
func (e Environment) DispatchURL(raw string) (*url.URL, error) {
	resolved := e.Resolve(raw)

	u, err := url.Parse(resolved)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL %q: %w", resolved, err)
	}
	if u.IsAbs() {
		return u, nil
	}

	if e.PageOrigin == "" {
		return nil, fmt.Errorf("cannot dispatch relative URL %q: no page origin configured for local web development", resolved)
	}

	origin, err := url.Parse(e.PageOrigin)
	if err != nil {
		return nil, fmt.Errorf("invalid page origin %q: %w", e.PageOrigin, err)
	}
	return origin.ResolveReference(u), nil
}

// WithOverrides applies APPSHELL_* environment variables on top of e
func (e Environment) WithOverrides() Environment {
	if v := os.Getenv(EnvPlatform); v != "" {
		e.Platform = Platform(strings.ToLower(v))
	}
	if v := os.Getenv(EnvMode); v != "" {
		e.Mode = Mode(strings.ToLower(v))
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		e.BaseURL = v
	}
	if v := os.Getenv(EnvPageOrigin); v != "" {
		e.PageOrigin = v
	}
	return e
}

// Validate checks the platform and mode values
func (e Environment) Validate() error {
	switch e.Platform {
	case PlatformH5, PlatformApp:
	default:
		return fmt.Errorf("invalid platform '%s', must be one of: h5, app", e.Platform)
	}

	switch e.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("invalid mode '%s', must be one of: development, production", e.Mode)
	}

	if !e.IsLocalWebDev() && e.BaseURL == "" {
		return fmt.Errorf("base URL is required outside local web development")
	}

	return nil
}

// IsAbsolute reports whether raw already names an http(s) origin
func IsAbsolute(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// hasPathPrefix matches whole segments: /api and /api/x match, /apis does not
func hasPathPrefix(p, prefix string) bool {
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	rest := p[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}
