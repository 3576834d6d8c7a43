package interceptor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/appshell-dev/appshell/internal/cli/endpoint"
	"github.com/appshell-dev/appshell/internal/cli/session"
)

// fakeNavigator records redirects to login
type fakeNavigator struct {
	mu        sync.Mutex
	onLogin   bool
	redirects int
}

func (f *fakeNavigator) OnLogin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onLogin
}

func (f *fakeNavigator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirects
}

func (f *fakeNavigator) ToLogin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirects++
	f.onLogin = true
}

// recordingServer answers every request with status and captures what it saw
type recordingServer struct {
	*httptest.Server
	mu      sync.Mutex
	status  int
	path    string
	auth    []string
	hasAuth bool
}

func newRecordingServer(t *testing.T, status int) *recordingServer {
	t.Helper()
	rs := &recordingServer{status: status}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.path = r.URL.RequestURI()
		rs.auth = r.Header.Values("Authorization")
		_, rs.hasAuth = r.Header["Authorization"]
		status := rs.status
		rs.mu.Unlock()

		w.WriteHeader(status)
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) setStatus(status int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.status = status
}

func (rs *recordingServer) seenPath() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.path
}

func (rs *recordingServer) seenAuth() ([]string, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.auth, rs.hasAuth
}

func newTestInterceptor(baseURL string, store session.Store, nav Navigator) *Interceptor {
	env := endpoint.Environment{
		Platform: endpoint.PlatformApp,
		Mode:     endpoint.ModeProduction,
		BaseURL:  baseURL,
	}
	return New(store, env, nav, zerolog.Nop())
}

func storeWithToken(t *testing.T, token string) session.Store {
	t.Helper()
	store := session.NewMemoryStore()
	if err := session.Save(store, session.Session{Token: token, Username: "alice"}); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}
	return store
}

func TestTransport_AttachesBearerAndResolvesURL(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK)
	ic := newTestInterceptor(srv.URL, storeWithToken(t, "abc123"), &fakeNavigator{})
	client := NewHTTPClient(ic, nil)

	req, err := http.NewRequest(http.MethodGet, "/notes", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if srv.seenPath() != "/api/notes" {
		t.Errorf("server saw path %q, want /api/notes", srv.seenPath())
	}
	if auth, _ := srv.seenAuth(); len(auth) != 1 || auth[0] != "Bearer abc123" {
		t.Errorf("Authorization = %v, want [Bearer abc123]", auth)
	}
	if req.Header.Get("Authorization") != "" {
		t.Error("caller's request must not be mutated")
	}
}

func TestTransport_NoTokenNoHeader(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK)
	ic := newTestInterceptor(srv.URL, session.NewMemoryStore(), &fakeNavigator{})
	client := NewHTTPClient(ic, nil)

	resp, err := client.Get("/movies/movies/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if auth, present := srv.seenAuth(); present {
		t.Errorf("expected no Authorization header, got %v", auth)
	}
	if srv.seenPath() != "/api/movies/movies/page" {
		t.Errorf("server saw path %q", srv.seenPath())
	}
}

func TestTransport_AbsoluteURLKept(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK)
	ic := newTestInterceptor("http://unused.invalid", storeWithToken(t, "abc123"), nil)
	client := NewHTTPClient(ic, nil)

	resp, err := client.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if srv.seenPath() != "/health" {
		t.Errorf("server saw path %q, want /health", srv.seenPath())
	}
}

func TestTransport_AuthStatusesClearSessionAndRedirect(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := newRecordingServer(t, status)
			store := storeWithToken(t, "expired")
			nav := &fakeNavigator{}
			client := NewHTTPClient(newTestInterceptor(srv.URL, store, nav), nil)

			_, err := client.Get("/notes")
			if !errors.Is(err, ErrAuthExpired) {
				t.Fatalf("expected ErrAuthExpired, got %v", err)
			}

			var authErr *AuthExpiredError
			if !errors.As(err, &authErr) || authErr.Status != status {
				t.Errorf("expected *AuthExpiredError with status %d, got %v", status, err)
			}

			if _, ok := store.Get(session.KeyToken); ok {
				t.Error("token should be cleared")
			}
			if _, ok := store.Get(session.KeyUsername); ok {
				t.Error("username should be cleared")
			}
			if nav.count() != 1 {
				t.Errorf("redirects = %d, want 1", nav.count())
			}
		})
	}
}

func TestTransport_NoRedirectLoopOnLogin(t *testing.T) {
	srv := newRecordingServer(t, http.StatusForbidden)
	store := storeWithToken(t, "expired")
	nav := &fakeNavigator{onLogin: true}
	client := NewHTTPClient(newTestInterceptor(srv.URL, store, nav), nil)

	_, err := client.Get("/notes")
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if nav.count() != 0 {
		t.Errorf("redirects = %d, want 0 when already on login", nav.count())
	}
	if session.IsAuthenticated(store) {
		t.Error("session should still be cleared")
	}
}

func TestTransport_OtherErrorStatusesPassThrough(t *testing.T) {
	srv := newRecordingServer(t, http.StatusInternalServerError)
	store := storeWithToken(t, "abc123")
	nav := &fakeNavigator{}
	client := NewHTTPClient(newTestInterceptor(srv.URL, store, nav), nil)

	resp, err := client.Get("/notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.StatusCode)
	}

	var statusErr *StatusError
	if err := CheckResponse(resp); !errors.As(err, &statusErr) || statusErr.Status != 500 {
		t.Errorf("CheckResponse() = %v", err)
	}

	if !session.IsAuthenticated(store) {
		t.Error("500 must not clear the session")
	}
	if nav.count() != 0 {
		t.Error("500 must not redirect")
	}
}

func TestTransport_ExemptFlagIsOneShot(t *testing.T) {
	srv := newRecordingServer(t, http.StatusForbidden)
	store := storeWithToken(t, "abc123")
	nav := &fakeNavigator{}
	client := NewHTTPClient(newTestInterceptor(srv.URL, store, nav), nil)

	ctx := WithExempt(context.Background())

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/webview/page", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("exempt request should not fail: %v", err)
	}
	resp.Body.Close()

	if !session.IsAuthenticated(store) || nav.count() != 0 {
		t.Fatal("exempt request must not clear the session or redirect")
	}
	if IsExempt(ctx) {
		t.Error("exempt mark should be consumed")
	}

	// Same context again: the mark is gone, so the guard applies
	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, "/webview/page", nil)
	if _, err := client.Do(req); !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired on second call, got %v", err)
	}
	if session.IsAuthenticated(store) {
		t.Error("second call should clear the session")
	}
}

func TestTransport_ExemptConsumedOnSuccessAndFailure(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK)
	client := NewHTTPClient(newTestInterceptor(srv.URL, session.NewMemoryStore(), nil), nil)

	okCtx := WithExempt(context.Background())
	req, _ := http.NewRequestWithContext(okCtx, http.MethodGet, "/ping", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if IsExempt(okCtx) {
		t.Error("exempt mark should be consumed on success")
	}

	// Closed server: transport failure
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	failClient := NewHTTPClient(newTestInterceptor(dead.URL, session.NewMemoryStore(), nil), nil)

	failCtx := WithExempt(context.Background())
	req, _ = http.NewRequestWithContext(failCtx, http.MethodGet, "/ping", nil)
	if _, err := failClient.Do(req); err == nil {
		t.Fatal("expected transport error")
	}
	if IsExempt(failCtx) {
		t.Error("exempt mark should be consumed on failure")
	}
}

func TestTransport_ExemptSurvivesRedirectHop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/auth/signin", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/api/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := storeWithToken(t, "old")
	nav := &fakeNavigator{}
	client := NewHTTPClient(newTestInterceptor(srv.URL, store, nav), nil)

	ctx := WithExempt(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, "/auth/login", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("exempt request should not fail: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if !session.IsAuthenticated(store) || nav.count() != 0 {
		t.Error("exempt request must not clear the session or redirect after a redirect hop")
	}
	if IsExempt(ctx) {
		t.Error("exempt mark should be consumed by the final response")
	}
}

func TestTransport_RedirectedAuthFailureIsGuarded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/notes/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/api/notes/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := storeWithToken(t, "old")
	nav := &fakeNavigator{}
	client := NewHTTPClient(newTestInterceptor(srv.URL, store, nav), nil)

	req, _ := http.NewRequest(http.MethodGet, "/notes", nil)
	if _, err := client.Do(req); !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if session.IsAuthenticated(store) {
		t.Error("401 after a redirect should clear the session")
	}
	if nav.count() != 1 {
		t.Errorf("redirects = %d, want 1", nav.count())
	}
}

func TestTransport_ConcurrentExemptDoesNotLeak(t *testing.T) {
	srv := newRecordingServer(t, http.StatusForbidden)
	store := storeWithToken(t, "abc123")
	client := NewHTTPClient(newTestInterceptor(srv.URL, store, &fakeNavigator{}), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(WithExempt(context.Background()), http.MethodGet, "/x", nil)
			if resp, err := client.Do(req); err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	if !session.IsAuthenticated(store) {
		t.Error("exempt requests on separate contexts must not clear the session")
	}
}

func TestTransport_LocalWebDevUsesPageOrigin(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK)
	env := endpoint.Environment{
		Platform:   endpoint.PlatformH5,
		Mode:       endpoint.ModeDevelopment,
		BaseURL:    "http://unused.invalid",
		PageOrigin: srv.URL,
	}
	ic := New(storeWithToken(t, "abc123"), env, nil, zerolog.Nop())

	if got := ic.ResolveURL("/notes"); got != "/api/notes" {
		t.Errorf("ResolveURL() = %q, want /api/notes", got)
	}

	resp, err := NewHTTPClient(ic, nil).Get("/notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if srv.seenPath() != "/api/notes" {
		t.Errorf("server saw %q", srv.seenPath())
	}
}

func TestAttach_Resty(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK)
	store := storeWithToken(t, "abc123")
	nav := &fakeNavigator{}
	rc := newTestInterceptor(srv.URL, store, nav).Attach(resty.New())

	resp, err := rc.R().Get("/movies/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode())
	}
	if srv.seenPath() != "/api/movies/1" {
		t.Errorf("server saw path %q", srv.seenPath())
	}
	if auth, _ := srv.seenAuth(); len(auth) != 1 || auth[0] != "Bearer abc123" {
		t.Errorf("Authorization = %v", auth)
	}

	srv.setStatus(http.StatusUnauthorized)
	_, err = rc.R().Get("/movies/1")
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if session.IsAuthenticated(store) {
		t.Error("401 should clear the session")
	}
	if nav.count() != 1 {
		t.Errorf("redirects = %d, want 1", nav.count())
	}
}

func TestAttach_RestyExempt(t *testing.T) {
	srv := newRecordingServer(t, http.StatusForbidden)
	store := storeWithToken(t, "abc123")
	rc := newTestInterceptor(srv.URL, store, &fakeNavigator{}).Attach(resty.New())

	ctx := WithExempt(context.Background())
	resp, err := rc.R().SetContext(ctx).Get("/webview")
	if err != nil {
		t.Fatalf("exempt request should not error: %v", err)
	}
	if resp.StatusCode() != http.StatusForbidden {
		t.Errorf("status = %d", resp.StatusCode())
	}
	if !session.IsAuthenticated(store) {
		t.Error("exempt request must not clear the session")
	}
	if IsExempt(ctx) {
		t.Error("exempt mark should be consumed")
	}
}
