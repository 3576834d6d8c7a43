// Package session holds the client-side credentials of an app and the
// anonymous/authenticated state derived from them.
package session

import (
	"errors"
	"fmt"
)

// State is the client's view of its own authentication
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the pair of values a successful login leaves behind
type Session struct {
	Token    string
	Username string
}

// Load reads the session from the store. Missing keys become empty strings.
func Load(store Store) Session {
	token, _ := store.Get(KeyToken)
	username, _ := store.Get(KeyUsername)
	return Session{Token: token, Username: username}
}

// Save records a login response
func Save(store Store, s Session) error {
	if s.Token == "" {
		return fmt.Errorf("cannot save session without a token")
	}
	if err := store.Set(KeyToken, s.Token); err != nil {
		return err
	}
	if s.Username == "" {
		return store.Remove(KeyUsername)
	}
	return store.Set(KeyUsername, s.Username)
}

// Clear removes both token and username. Both removals are attempted even if one fails.
func Clear(store Store) error {
	return errors.Join(store.Remove(KeyToken), store.Remove(KeyUsername))
}

// IsAuthenticated reports whether a non-empty token is stored
func IsAuthenticated(store Store) bool {
	token, ok := store.Get(KeyToken)
	return ok && token != ""
}

// StateOf derives the state machine position from the store
func StateOf(store Store) State {
	if IsAuthenticated(store) {
		return StateAuthenticated
	}
	return StateAnonymous
}
