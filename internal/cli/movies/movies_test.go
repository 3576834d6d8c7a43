package movies

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/appshell-dev/appshell/internal/cli/endpoint"
	"github.com/appshell-dev/appshell/internal/cli/interceptor"
	"github.com/appshell-dev/appshell/internal/cli/router"
	"github.com/appshell-dev/appshell/internal/cli/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, store session.Store) (*Client, *router.PageStack) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	pages := router.NewPageStack(router.MoviesPages(), store, zerolog.Nop())
	env := endpoint.Environment{Platform: endpoint.PlatformApp, Mode: endpoint.ModeProduction, BaseURL: server.URL}
	return New(interceptor.New(store, env, pages, zerolog.Nop())), pages
}

func TestList(t *testing.T) {
	store := session.NewMemoryStore()
	_ = session.Save(store, session.Session{Token: "abc123", Username: "alice"})

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/movies/movies/page" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("size") != "5" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer abc123" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Page{Records: []Movie{{ID: "m1", Title: "Alien"}}, Total: 6, Page: 2, Size: 5})
	}, store)

	page, err := c.List(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Records) != 1 || page.Records[0].Title != "Alien" || page.Total != 6 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestDetail_EscapesID(t *testing.T) {
	store := session.NewMemoryStore()
	_ = session.Save(store, session.Session{Token: "abc123", Username: "alice"})

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.RequestURI != "/api/movies/a%2Fb" {
			t.Errorf("request URI = %q, want /api/movies/a%%2Fb", r.RequestURI)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Movie{ID: "a/b", Title: "Alien"})
	}, store)

	movie, err := c.Detail(context.Background(), "a/b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if movie.Title != "Alien" {
		t.Errorf("unexpected movie %+v", movie)
	}
}

func TestDetail_ExpiredTokenRelaunchesLogin(t *testing.T) {
	store := session.NewMemoryStore()
	_ = session.Save(store, session.Session{Token: "expired", Username: "alice"})

	c, pages := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, store)
	pages.ReLaunch("/pages/index/index")
	pages.NavigateTo("/pages/movie/detail?id=m1")

	_, err := c.Detail(context.Background(), "m1")
	if !errors.Is(err, interceptor.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if session.IsAuthenticated(store) {
		t.Error("session should be cleared")
	}
	if pages.Route() != router.PageLogin || pages.Depth() != 1 {
		t.Errorf("expected relaunch to login, got %q depth %d", pages.Route(), pages.Depth())
	}
}

func TestWebView_IsExempt(t *testing.T) {
	store := session.NewMemoryStore()
	_ = session.Save(store, session.Session{Token: "abc123"})

	c, pages := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("members only"))
	}, store)
	pages.ReLaunch("/pages/index/index")

	res, err := c.WebView(context.Background(), "/movies/m1/trailer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != http.StatusUnauthorized || string(res.Body) != "members only" {
		t.Errorf("unexpected result %+v", res)
	}
	if !session.IsAuthenticated(store) {
		t.Error("web-view requests must not clear the session")
	}
	if pages.OnLogin() {
		t.Error("web-view requests must not redirect")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, session.NewMemoryStore())

	if _, _, err := c.Login(context.Background(), "alice", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
