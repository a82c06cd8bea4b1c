package client

import (
	"context"
	"strconv"
	"sync"
)

// ViewState is the request-lifecycle state of the counter view.
type ViewState int

const (
	// StateLoading means a request is outstanding.
	StateLoading ViewState = iota

	// StateSuccess means the last request completed and Text holds the
	// counter value.
	StateSuccess

	// StateFailure means the last request failed and Text holds the
	// transport classification.
	StateFailure
)

// String returns a human-readable representation of the state.
func (s ViewState) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateSuccess:
		return "Success"
	case StateFailure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// View is what the frontend renders: a state plus its display text.
type View struct {
	State ViewState
	Text  string
}

// Session drives the counter view-state machine. A session starts in
// Loading; Refresh and the mutating calls move it through
// Loading/Success/Failure. Mutations that succeed trigger a
// read-after-write refresh so the view always shows the service's
// value, never a locally computed one. There are no retries.
type Session struct {
	client *Client

	mu   sync.Mutex
	view View
}

// NewSession creates a session in the Loading state. Call Refresh to
// issue the initial fetch.
func NewSession(c *Client) *Session {
	return &Session{
		client: c,
		view:   View{State: StateLoading},
	}
}

// Current returns the view as of the last completed transition.
func (s *Session) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Refresh fetches the current value and resolves to Success or Failure.
func (s *Session) Refresh(ctx context.Context) View {
	s.setLoading()

	v, err := s.client.Fetch(ctx)
	if err != nil {
		return s.setFailure(err)
	}
	return s.setSuccess(strconv.FormatInt(v, 10))
}

// Increment issues the mutation and, on success, refreshes the value.
func (s *Session) Increment(ctx context.Context) View {
	s.setLoading()

	if err := s.client.Increment(ctx); err != nil {
		return s.setFailure(err)
	}
	return s.Refresh(ctx)
}

// Decrement issues the mutation and, on success, refreshes the value.
func (s *Session) Decrement(ctx context.Context) View {
	s.setLoading()

	if err := s.client.Decrement(ctx); err != nil {
		return s.setFailure(err)
	}
	return s.Refresh(ctx)
}

func (s *Session) setLoading() {
	s.mu.Lock()
	s.view = View{State: StateLoading}
	s.mu.Unlock()
}

func (s *Session) setSuccess(text string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = View{State: StateSuccess, Text: text}
	return s.view
}

func (s *Session) setFailure(err error) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = View{State: StateFailure, Text: err.Error()}
	return s.view
}
