// Package shell assembles one client app: its token store, navigation
// runtime, request interceptor and API client.
package shell

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/appshell-dev/appshell/internal/cli/client"
	"github.com/appshell-dev/appshell/internal/cli/config"
	"github.com/appshell-dev/appshell/internal/cli/interceptor"
	"github.com/appshell-dev/appshell/internal/cli/movies"
	"github.com/appshell-dev/appshell/internal/cli/router"
	"github.com/appshell-dev/appshell/internal/cli/session"
	"github.com/appshell-dev/appshell/internal/cli/userconfig"
)

// ErrInvalidCredentials is returned by Login for a rejected username/password
var ErrInvalidCredentials = errors.New("invalid username or password")

// LoginRequiredError is returned when a navigation was diverted to the login screen
type LoginRequiredError struct {
	Target   string
	Location string
}

func (e *LoginRequiredError) Error() string {
	return fmt.Sprintf("%s requires login, run 'appshell login' (now at %s)", e.Target, e.Location)
}

// Options tune how a shell is assembled
type Options struct {
	// Store replaces the store selected by the app config
	Store session.Store

	// Transport is the base round tripper for API requests; nil uses http.DefaultTransport
	Transport http.RoundTripper

	Logger zerolog.Logger

	// SkipRestore starts the navigator fresh instead of at the remembered location
	SkipRestore bool
}

// Shell is one running client app
type Shell struct {
	App         *config.App
	Store       session.Store
	Table       *router.Table
	Navigator   router.Navigator
	Interceptor *interceptor.Interceptor

	// Exactly one of Notes and Movies is set, by app kind
	Notes  *client.Client
	Movies *movies.Client

	logger zerolog.Logger
}

// Open assembles the shell for app
func Open(app *config.App, opts Options) (*Shell, error) {
	if err := app.Validate(); err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = OpenStore(app)
		if err != nil {
			return nil, err
		}
	}

	logger := opts.Logger.With().Str("app", app.Alias).Logger()

	s := &Shell{
		App:    app,
		Store:  store,
		logger: logger,
	}

	switch app.Kind {
	case config.KindNotes:
		s.Table = router.NotesRoutes()
		s.Navigator = router.NewHistory(s.Table, store, logger)
	case config.KindMovies:
		s.Table = router.MoviesPages()
		s.Navigator = router.NewPageStack(s.Table, store, logger)
	}

	s.Interceptor = interceptor.New(store, app.Environment(), s.Navigator, logger)

	switch app.Kind {
	case config.KindNotes:
		s.Notes = client.New(s.Interceptor, opts.Transport)
	case config.KindMovies:
		rc := resty.New()
		if opts.Transport != nil {
			rc.SetTransport(opts.Transport)
		}
		s.Movies = movies.NewWithResty(rc, s.Interceptor)
	}

	if !opts.SkipRestore {
		location, err := userconfig.GetLocation(app.Alias)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to load last location")
		}
		s.Navigator.Restore(location)
	}

	return s, nil
}

// OpenStore opens the token store the app config selects
func OpenStore(app *config.App) (session.Store, error) {
	switch app.StoreKind() {
	case config.StoreKeyring:
		return session.NewKeyringStore(app.Alias), nil
	case config.StoreMemory:
		return session.NewMemoryStore(), nil
	default:
		path, err := session.DefaultPath(app.Alias)
		if err != nil {
			return nil, err
		}
		return session.NewFileStore(path)
	}
}

// Visit navigates through the guard. A diverted navigation is reported as *LoginRequiredError.
func (s *Shell) Visit(target string) (router.Decision, error) {
	d := s.Navigator.Open(target)
	if !d.Allowed {
		return d, &LoginRequiredError{Target: target, Location: d.Location}
	}
	return d, nil
}

// Login authenticates, stores the session and leaves the login screen for the
// path preserved in its redirect parameter, or home. It returns where it landed.
func (s *Shell) Login(ctx context.Context, username, password string) (string, error) {
	var token, name string

	switch s.App.Kind {
	case config.KindNotes:
		resp, err := s.Notes.Login(ctx, username, password)
		if err != nil {
			if errors.Is(err, client.ErrInvalidCredentials) {
				return "", ErrInvalidCredentials
			}
			return "", err
		}
		token, name = resp.Token, resp.Username
	case config.KindMovies:
		var err error
		token, name, err = s.Movies.Login(ctx, username, password)
		if err != nil {
			if errors.Is(err, movies.ErrInvalidCredentials) {
				return "", ErrInvalidCredentials
			}
			return "", err
		}
	}

	if name == "" {
		name = username
	}
	if err := session.Save(s.Store, session.Session{Token: token, Username: name}); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	target := s.Table.HomePath()
	if s.Navigator.OnLogin() {
		target = router.RedirectTarget(s.Table, s.Navigator.Current())
	}
	d := s.Navigator.Open(target)

	s.logger.Info().Str("username", name).Str("location", d.Location).Msg("Logged in")
	return d.Location, nil
}

// Logout clears the session and returns to the login screen
func (s *Shell) Logout() error {
	if err := session.Clear(s.Store); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.Navigator.ToLogin()
	return nil
}

// Session returns the stored session
func (s *Shell) Session() session.Session {
	return session.Load(s.Store)
}

// Persist remembers the current location for the next invocation
func (s *Shell) Persist() error {
	return userconfig.SetLocation(s.App.Alias, s.Navigator.Current())
}
