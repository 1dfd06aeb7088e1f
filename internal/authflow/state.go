// Package authflow implements the authentication state machine for the
// guardian session. The session moves through a small set of mutually
// exclusive states driven by credential submission and second-factor
// codes; transitions consume the old state value and produce exactly one
// new value, so the session always has a single owner.
package authflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/nestsync/nestsync/internal/brightwheel"
)

// Tab names reported to the caller. They identify which screen the UI
// should show for the current state.
const (
	TabLogin    = "login"
	TabMFA      = "mfa"
	TabLoggedIn = "loggedin"
)

// State is the current authentication state. Exactly one State value is
// live at a time.
type State interface {
	// ActiveTab names the UI tab corresponding to this state.
	ActiveTab() string

	isState()
}

// Start is the initial state: no credentials submitted yet.
type Start struct {
	Session brightwheel.Service
}

// NeedsSecondFactor holds a provisionally accepted login that still
// requires a one-time code.
type NeedsSecondFactor struct {
	Session brightwheel.Service
}

// LoggedIn is the terminal success state; the cookie jar reflects a valid
// server session, which it exposes to the sync engine.
type LoggedIn struct {
	Session brightwheel.Service
}

// Failed is terminal for the current attempt and holds the cause.
type Failed struct {
	Message string
}

func (Start) ActiveTab() string             { return TabLogin }
func (NeedsSecondFactor) ActiveTab() string { return TabMFA }
func (LoggedIn) ActiveTab() string          { return TabLoggedIn }
func (Failed) ActiveTab() string            { return TabLogin }

func (Start) isState()             {}
func (NeedsSecondFactor) isState() {}
func (LoggedIn) isState()          {}
func (Failed) isState()            {}

// Login submits primary credentials. The begin-session response decides
// whether a second factor is required; when the server says none is, the
// full session is created immediately.
func (s Start) Login(ctx context.Context, email, password string) State {
	body, err := s.Session.StartLogin(ctx, email, password)
	if err != nil {
		return Failed{Message: err.Error()}
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return Failed{Message: brightwheel.ErrUnexpectedShape.Msg("begin-session response is not an object").Error()}
	}

	required := res.Get("2fa_required")
	switch {
	case !required.Exists():
		// The server omits 2fa_required when the account is already
		// signed in, but this may also mask a failed login. Keep the raw
		// response visible for diagnosis.
		log.Warn().RawJSON("response", body).Msg("begin-session response omitted 2fa_required; assuming logged in")
		return LoggedIn{Session: s.Session}
	case required.Type == gjson.True:
		return NeedsSecondFactor{Session: s.Session}
	case required.Type == gjson.False:
		return createSession(ctx, s.Session, email, password, "")
	default:
		return Failed{Message: fmt.Sprintf("2fa_required is %s, expected a boolean", required.Type)}
	}
}

// Submit completes authentication with the one-time code.
func (s NeedsSecondFactor) Submit(ctx context.Context, email, password, code string) State {
	return createSession(ctx, s.Session, email, password, code)
}

// createSession drives the create-session endpoint. Any JSON object
// response means the cookie jar now holds a valid session.
func createSession(ctx context.Context, svc brightwheel.Service, email, password, code string) State {
	body, err := svc.SubmitSession(ctx, email, password, code)
	if err != nil {
		return Failed{Message: err.Error()}
	}
	if !gjson.ParseBytes(body).IsObject() {
		return Failed{Message: brightwheel.ErrUnexpectedShape.Msg("create-session response is not an object").Error()}
	}
	return LoggedIn{Session: svc}
}
