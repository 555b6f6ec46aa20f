package reader

import (
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"marketfeed/config"
)

// ConnState tracks one upstream socket through its lifecycle.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// Supervisor drives reconnection for one upstream socket. A successful open
// resets the attempt counter; once the counter reaches the configured
// maximum no further reconnect is scheduled until an explicit Connect.
type Supervisor struct {
	cfg config.ReconnectConfig

	mu       sync.Mutex
	state    ConnState
	attempts int
	backoff  *backoff.Backoff
}

func NewSupervisor(cfg config.ReconnectConfig) *Supervisor {
	s := &Supervisor{cfg: cfg, state: StateDisconnected}
	if strings.ToLower(cfg.Policy) == "backoff" {
		s.backoff = &backoff.Backoff{
			Min:    cfg.BackoffBase,
			Max:    cfg.BackoffCap,
			Factor: 2,
			Jitter: true,
		}
	}
	return s
}

// Connecting marks the socket as dialing.
func (s *Supervisor) Connecting() {
	s.mu.Lock()
	s.state = StateConnecting
	s.mu.Unlock()
}

// Connected marks a successful open and resets the attempt counter.
func (s *Supervisor) Connected() {
	s.mu.Lock()
	s.state = StateConnected
	s.attempts = 0
	if s.backoff != nil {
		s.backoff.Reset()
	}
	s.mu.Unlock()
}

// Disconnected records an unexpected close. It reports whether a reconnect
// should be scheduled and, if so, after what delay.
func (s *Supervisor) Disconnected() (retry bool, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateDisconnected
	if s.attempts >= s.cfg.MaxAttempts {
		return false, 0
	}
	s.attempts++
	if s.backoff != nil {
		return true, s.backoff.Duration()
	}
	return true, s.cfg.Interval
}

func (s *Supervisor) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}
