package authflow

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nestsync/nestsync/internal/brightwheel"
)

// Manager owns the single authentication state slot. Callers access it
// under mutual exclusion: each operation holds the lock for its full
// duration, so overlapping login and sync requests cannot race on the
// same session.
type Manager struct {
	mu    sync.Mutex
	state State

	// svc is the process-wide session; the current state holds it too,
	// but the manager keeps a reference so a failed attempt can be
	// retried from Start.
	svc brightwheel.Service

	cookiePath string
	persisted  bool
}

// Result is the record returned to the caller for each operation.
// Message is populated only on failure.
type Result struct {
	Message   string `json:"message,omitempty"`
	ActiveTab string `json:"active_tab"`
}

// NewManager creates the manager for the given session. When cookiePath
// names a readable cookie file the manager starts directly in LoggedIn;
// otherwise it starts in Start with the session's empty jar.
func NewManager(svc brightwheel.Service, cookiePath string) *Manager {
	m := &Manager{
		svc:        svc,
		state:      Start{Session: svc},
		cookiePath: cookiePath,
	}
	if cookiePath != "" {
		if err := svc.LoadCookies(cookiePath); err == nil {
			m.state = LoggedIn{Session: svc}
			m.persisted = true
		} else {
			log.Debug().Err(err).Str("path", cookiePath).Msg("no resumable session")
		}
	}
	return m
}

// Init reports which state the process resumed into. No network call.
func (m *Manager) Init() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Result{ActiveTab: m.state.ActiveTab()}
}

// Login drives the Start transition. A previous Failed state is treated
// as a fresh Start so the caller can retry; any other state yields a
// mismatch result without being mutated.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st Start
	switch cur := m.state.(type) {
	case Start:
		st = cur
	case Failed:
		st = Start{Session: m.svc}
	default:
		return m.mismatch("login")
	}

	next := st.Login(ctx, email, password)
	m.commit(next)
	return m.result(next)
}

// LoginSecondFactor drives the NeedsSecondFactor transition. In any other
// state it yields a mismatch result without mutating the current state.
func (m *Manager) LoginSecondFactor(ctx context.Context, email, password, code string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.state.(NeedsSecondFactor)
	if !ok {
		return m.mismatch("second-factor submit")
	}

	next := st.Submit(ctx, email, password, code)
	m.commit(next)
	return m.result(next)
}

// Sync runs fn against the logged-in session, holding the state lock for
// the full duration. When the current state is not LoggedIn it fails
// without calling fn.
func (m *Manager) Sync(ctx context.Context, fn func(context.Context, brightwheel.Service) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.state.(LoggedIn)
	if !ok {
		return ErrStateMismatch.Msg("sync requires a logged-in session, current state is " + stateName(m.state))
	}
	return fn(ctx, st.Session)
}

// commit installs the new state and persists the cookie jar on the first
// transition into LoggedIn.
func (m *Manager) commit(next State) {
	m.state = next
	if _, ok := next.(LoggedIn); ok && !m.persisted && m.cookiePath != "" {
		if err := m.svc.SaveCookies(m.cookiePath); err != nil {
			log.Error().Err(err).Str("path", m.cookiePath).Msg("failed to persist session cookies")
			return
		}
		m.persisted = true
	}
}

func (m *Manager) mismatch(op string) Result {
	return Result{
		Message:   ErrStateMismatch.Msg(op + " is not valid in state " + stateName(m.state)).Error(),
		ActiveTab: m.state.ActiveTab(),
	}
}

func (m *Manager) result(st State) Result {
	if f, ok := st.(Failed); ok {
		return Result{Message: f.Message, ActiveTab: f.ActiveTab()}
	}
	return Result{ActiveTab: st.ActiveTab()}
}

func stateName(st State) string {
	switch st.(type) {
	case Start:
		return "start"
	case NeedsSecondFactor:
		return "needs-second-factor"
	case LoggedIn:
		return "logged-in"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
