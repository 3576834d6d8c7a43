package router

import (
	"net/url"
	"strings"

	"github.com/appshell-dev/appshell/internal/cli/session"
)

// RedirectParam is the query parameter carrying the originally requested path
const RedirectParam = "redirect"

// maxRedirects bounds chains of static Redirect routes
const maxRedirects = 8

// Decision is the outcome of guarding one navigation
type Decision struct {
	// Allowed is false when the navigation was diverted to the login screen
	Allowed bool

	// Location is where the navigation ends up
	Location string

	// Match is the route Location resolved to; zero when the path is unknown
	Match Match
}

// Guard decides a navigation to target. It never mutates the store.
// Targets requiring auth without a stored token go to login with the original
// path preserved; everything else proceeds unchanged.
func Guard(t *Table, target string, store session.Store) Decision {
	location := target
	match, found := t.Lookup(location)

	for i := 0; found && match.Route.Redirect != "" && i < maxRedirects; i++ {
		location = match.Route.Redirect
		match, found = t.Lookup(location)
	}

	if found && match.Route.RequiresAuth && !session.IsAuthenticated(store) {
		login := LoginLocation(t, location)
		loginMatch, _ := t.Lookup(login)
		return Decision{Allowed: false, Location: login, Match: loginMatch}
	}

	return Decision{Allowed: true, Location: location, Match: match}
}

// LoginLocation builds the login path carrying from as the redirect target
func LoginLocation(t *Table, from string) string {
	return t.LoginPath() + "?" + RedirectParam + "=" + escapeRedirect(from)
}

// RedirectTarget recovers the preserved path from a login location, falling
// back to the table's home path. Only local paths are honoured.
func RedirectTarget(t *Table, loginLocation string) string {
	u, err := url.Parse(loginLocation)
	if err != nil {
		return t.HomePath()
	}

	target := u.Query().Get(RedirectParam)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return t.HomePath()
	}
	if t.IsLogin(target) {
		return t.HomePath()
	}
	return target
}

// escapeRedirect keeps '/' readable, matching how browser routers print paths in queries
func escapeRedirect(p string) string {
	return strings.ReplaceAll(url.QueryEscape(p), "%2F", "/")
}
