package authflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestsync/nestsync/internal/brightwheel"
)

// fakeService scripts the session endpoints so transitions can be driven
// without a server.
type fakeService struct {
	startLoginResp []byte
	startLoginErr  error
	submitResp     []byte
	submitErr      error

	startLoginCalls int
	submitCalls     int
	submitCodes     []string
	savedPaths      []string
	loadErr         error
}

var _ brightwheel.Service = &fakeService{}

func (f *fakeService) StartLogin(ctx context.Context, email, password string) ([]byte, error) {
	f.startLoginCalls++
	return f.startLoginResp, f.startLoginErr
}

func (f *fakeService) SubmitSession(ctx context.Context, email, password, code string) ([]byte, error) {
	f.submitCalls++
	f.submitCodes = append(f.submitCodes, code)
	return f.submitResp, f.submitErr
}

func (f *fakeService) CurrentUser(ctx context.Context) ([]byte, error) { return nil, nil }

func (f *fakeService) Children(ctx context.Context, userID string) ([]byte, error) {
	return nil, nil
}

func (f *fakeService) ActivityPage(ctx context.Context, childID string, pageSize, page int) ([]byte, error) {
	return nil, nil
}

func (f *fakeService) DownloadFile(ctx context.Context, url, dest string) error { return nil }

func (f *fakeService) SaveCookies(path string) error {
	f.savedPaths = append(f.savedPaths, path)
	return nil
}

func (f *fakeService) LoadCookies(path string) error { return f.loadErr }

func TestLoginSecondFactorRequired(t *testing.T) {
	svc := &fakeService{startLoginResp: []byte(`{"2fa_required":true}`)}

	next := Start{Session: svc}.Login(context.Background(), "parent@example.com", "hunter2")

	nsf, ok := next.(NeedsSecondFactor)
	require.True(t, ok, "expected NeedsSecondFactor, got %T", next)
	// The session moves with the transition, not a copy of it.
	assert.Same(t, svc, nsf.Session)
	assert.Equal(t, 0, svc.submitCalls)
}

func TestLoginNoSecondFactorCreatesSessionImmediately(t *testing.T) {
	svc := &fakeService{
		startLoginResp: []byte(`{"2fa_required":false}`),
		submitResp:     []byte(`{}`),
	}

	next := Start{Session: svc}.Login(context.Background(), "parent@example.com", "hunter2")

	_, ok := next.(LoggedIn)
	require.True(t, ok, "expected LoggedIn, got %T", next)
	require.Equal(t, 1, svc.submitCalls)
	assert.Equal(t, "", svc.submitCodes[0])
}

func TestLoginOmittedSecondFactorFieldAssumesLoggedIn(t *testing.T) {
	svc := &fakeService{startLoginResp: []byte(`{"user":{"object_id":"u1"}}`)}

	next := Start{Session: svc}.Login(context.Background(), "parent@example.com", "hunter2")

	_, ok := next.(LoggedIn)
	require.True(t, ok, "expected LoggedIn, got %T", next)
	assert.Equal(t, 0, svc.submitCalls)
}

func TestLoginNonBooleanSecondFactorFieldFails(t *testing.T) {
	svc := &fakeService{startLoginResp: []byte(`{"2fa_required":"yes"}`)}

	next := Start{Session: svc}.Login(context.Background(), "parent@example.com", "hunter2")

	failed, ok := next.(Failed)
	require.True(t, ok, "expected Failed, got %T", next)
	assert.Contains(t, failed.Message, "boolean")
}

func TestLoginNonObjectResponseFails(t *testing.T) {
	svc := &fakeService{startLoginResp: []byte(`[]`)}

	next := Start{Session: svc}.Login(context.Background(), "parent@example.com", "hunter2")

	failed, ok := next.(Failed)
	require.True(t, ok, "expected Failed, got %T", next)
	assert.Contains(t, failed.Message, "not an object")
}

func TestLoginTransportErrorFails(t *testing.T) {
	svc := &fakeService{startLoginErr: brightwheel.ErrTransport.Msg("connection refused")}

	next := Start{Session: svc}.Login(context.Background(), "parent@example.com", "hunter2")

	failed, ok := next.(Failed)
	require.True(t, ok, "expected Failed, got %T", next)
	assert.Contains(t, failed.Message, "connection refused")
}

func TestSubmitNonObjectResponseFails(t *testing.T) {
	svc := &fakeService{submitResp: []byte(`"nope"`)}

	next := NeedsSecondFactor{Session: svc}.Submit(context.Background(), "parent@example.com", "hunter2", "123456")

	_, ok := next.(Failed)
	require.True(t, ok, "expected Failed, got %T", next)
	assert.Equal(t, []string{"123456"}, svc.submitCodes)
}
