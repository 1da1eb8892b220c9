package playback

import (
	"sync"

	"github.com/google/uuid"
)

// Token identifies one playback attempt. The zero value means no session.
type Token string

func (t Token) IsZero() bool {
	return t == ""
}

// Authority mints session tokens and remembers which one is current.
type Authority struct {
	mu      sync.Mutex
	current Token
}

// Mint returns a fresh token and makes it current, superseding the previous one.
func (a *Authority) Mint() Token {
	t := Token(uuid.NewString())

	a.mu.Lock()
	a.current = t
	a.mu.Unlock()
	return t
}

// Revoke supersedes the current token without issuing a new one.
func (a *Authority) Revoke() {
	a.mu.Lock()
	a.current = ""
	a.mu.Unlock()
}

func (a *Authority) Current() Token {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *Authority) Valid(t Token) bool {
	if t.IsZero() {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current == t
}
