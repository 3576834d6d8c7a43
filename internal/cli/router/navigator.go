package router

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/appshell-dev/appshell/internal/cli/session"
)

// Navigator is the navigation runtime of one shell
type Navigator interface {
	// Current returns the active location
	Current() string
	// OnLogin reports whether the active location is the login screen
	OnLogin() bool
	// ToLogin forces navigation to the login screen without a guard check
	ToLogin()
	// Open navigates to target through the guard
	Open(target string) Decision
	// Restore sets the active location without guarding, e.g. from saved state
	Restore(location string)
}

// History is the browser shell's hash history: push and replace over a stack of locations
type History struct {
	mu      sync.Mutex
	table   *Table
	store   session.Store
	entries []string
	logger  zerolog.Logger
}

// NewHistory starts at the table's root
func NewHistory(table *Table, store session.Store, logger zerolog.Logger) *History {
	return &History{
		table:   table,
		store:   store,
		entries: []string{"/"},
		logger:  logger,
	}
}

// Push guards target and appends the resulting location
func (h *History) Push(target string) Decision {
	d := Guard(h.table, target, h.store)

	h.mu.Lock()
	h.entries = append(h.entries, d.Location)
	h.mu.Unlock()

	h.logDecision(target, d)
	return d
}

// Replace guards target and overwrites the current location
func (h *History) Replace(target string) Decision {
	d := Guard(h.table, target, h.store)

	h.mu.Lock()
	h.entries[len(h.entries)-1] = d.Location
	h.mu.Unlock()

	h.logDecision(target, d)
	return d
}

// Back pops one entry; the first entry is never popped
func (h *History) Back() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) > 1 {
		h.entries = h.entries[:len(h.entries)-1]
	}
	return h.entries[len(h.entries)-1]
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

func (h *History) OnLogin() bool {
	return h.table.IsLogin(h.Current())
}

func (h *History) ToLogin() {
	h.mu.Lock()
	h.entries = append(h.entries, h.table.LoginPath())
	h.mu.Unlock()
}

func (h *History) Open(target string) Decision {
	return h.Push(target)
}

func (h *History) Restore(location string) {
	if location == "" {
		return
	}
	h.mu.Lock()
	h.entries = []string{location}
	h.mu.Unlock()
}

func (h *History) logDecision(target string, d Decision) {
	if !d.Allowed {
		h.logger.Debug().Str("target", target).Str("location", d.Location).Msg("Navigation requires login")
		return
	}
	h.logger.Debug().Str("target", target).Str("location", d.Location).Msg("Navigation allowed")
}

// PageStack is the mobile shell's page stack. Locations are page paths such as
// /pages/movie/detail?id=3; Route() strips the leading slash and query like the
// framework's page route does.
type PageStack struct {
	mu     sync.Mutex
	table  *Table
	store  session.Store
	stack  []string
	logger zerolog.Logger
}

// NewPageStack starts with the table's home page
func NewPageStack(table *Table, store session.Store, logger zerolog.Logger) *PageStack {
	return &PageStack{
		table:  table,
		store:  store,
		stack:  []string{table.HomePath()},
		logger: logger,
	}
}

// NavigateTo guards target and pushes the resulting page
func (s *PageStack) NavigateTo(target string) Decision {
	d := Guard(s.table, target, s.store)

	s.mu.Lock()
	s.stack = append(s.stack, d.Location)
	s.mu.Unlock()

	s.logger.Debug().Str("target", target).Str("location", d.Location).Bool("allowed", d.Allowed).Msg("navigateTo")
	return d
}

// ReLaunch guards target and replaces the whole stack with the resulting page
func (s *PageStack) ReLaunch(target string) Decision {
	d := Guard(s.table, target, s.store)

	s.mu.Lock()
	s.stack = []string{d.Location}
	s.mu.Unlock()

	s.logger.Debug().Str("target", target).Str("location", d.Location).Bool("allowed", d.Allowed).Msg("reLaunch")
	return d
}

// NavigateBack pops delta pages, keeping at least one
func (s *PageStack) NavigateBack(delta int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delta < 1 {
		delta = 1
	}
	keep := len(s.stack) - delta
	if keep < 1 {
		keep = 1
	}
	s.stack = s.stack[:keep]
	return s.stack[len(s.stack)-1]
}

// Depth is the number of pages on the stack
func (s *PageStack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

func (s *PageStack) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack[len(s.stack)-1]
}

// Route returns the current page route, e.g. pages/login/login
func (s *PageStack) Route() string {
	return strings.TrimPrefix(pathOf(s.Current()), "/")
}

func (s *PageStack) OnLogin() bool {
	return s.table.IsLogin(s.Current())
}

// ToLogin relaunches the login page, dropping the rest of the stack
func (s *PageStack) ToLogin() {
	s.mu.Lock()
	s.stack = []string{s.table.LoginPath()}
	s.mu.Unlock()
}

func (s *PageStack) Open(target string) Decision {
	return s.NavigateTo(target)
}

func (s *PageStack) Restore(location string) {
	if location == "" {
		return
	}
	s.mu.Lock()
	s.stack = []string{location}
	s.mu.Unlock()
}
