package authflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestsync/nestsync/internal/brightwheel"
)

func TestManagerInitStartsInLogin(t *testing.T) {
	m := NewManager(&fakeService{}, "")
	assert.Equal(t, TabLogin, m.Init().ActiveTab)
}

func TestManagerResumesFromCookieFile(t *testing.T) {
	svc := &fakeService{} // LoadCookies succeeds
	m := NewManager(svc, "cookies.json")
	assert.Equal(t, TabLoggedIn, m.Init().ActiveTab)
}

func TestManagerStartsFreshWhenCookieFileUnusable(t *testing.T) {
	svc := &fakeService{loadErr: brightwheel.ErrFilesystem.Msg("no such file")}
	m := NewManager(svc, "cookies.json")
	assert.Equal(t, TabLogin, m.Init().ActiveTab)
}

func TestManagerSecondFactorInStartIsMismatch(t *testing.T) {
	svc := &fakeService{}
	m := NewManager(svc, "")

	res := m.LoginSecondFactor(context.Background(), "parent@example.com", "hunter2", "123456")

	assert.Contains(t, res.Message, "not valid")
	assert.Equal(t, TabLogin, res.ActiveTab)
	// The state was not involved in the mismatched call and is unchanged.
	assert.Equal(t, TabLogin, m.Init().ActiveTab)
	assert.Equal(t, 0, svc.submitCalls)
}

func TestManagerPersistsCookiesOnFirstLogin(t *testing.T) {
	svc := &fakeService{
		startLoginResp: []byte(`{"2fa_required":false}`),
		submitResp:     []byte(`{}`),
		loadErr:        brightwheel.ErrFilesystem.Msg("no such file"),
	}
	m := NewManager(svc, "cookies.json")

	res := m.Login(context.Background(), "parent@example.com", "hunter2")

	require.Empty(t, res.Message)
	assert.Equal(t, TabLoggedIn, res.ActiveTab)
	assert.Equal(t, []string{"cookies.json"}, svc.savedPaths)
}

func TestManagerSecondFactorFlowPersistsCookies(t *testing.T) {
	svc := &fakeService{
		startLoginResp: []byte(`{"2fa_required":true}`),
		submitResp:     []byte(`{}`),
		loadErr:        brightwheel.ErrFilesystem.Msg("no such file"),
	}
	m := NewManager(svc, "cookies.json")

	res := m.Login(context.Background(), "parent@example.com", "hunter2")
	require.Empty(t, res.Message)
	require.Equal(t, TabMFA, res.ActiveTab)
	assert.Empty(t, svc.savedPaths)

	res = m.LoginSecondFactor(context.Background(), "parent@example.com", "hunter2", "123456")
	require.Empty(t, res.Message)
	assert.Equal(t, TabLoggedIn, res.ActiveTab)
	assert.Equal(t, []string{"cookies.json"}, svc.savedPaths)
}

func TestManagerLoginRetriesAfterFailure(t *testing.T) {
	svc := &fakeService{startLoginResp: []byte(`[]`)}
	m := NewManager(svc, "")

	res := m.Login(context.Background(), "parent@example.com", "wrong")
	require.NotEmpty(t, res.Message)
	require.Equal(t, TabLogin, res.ActiveTab)

	svc.startLoginResp = []byte(`{"2fa_required":false}`)
	svc.submitResp = []byte(`{}`)
	res = m.Login(context.Background(), "parent@example.com", "hunter2")
	assert.Empty(t, res.Message)
	assert.Equal(t, TabLoggedIn, res.ActiveTab)
}

func TestManagerSyncRequiresLoggedIn(t *testing.T) {
	m := NewManager(&fakeService{}, "")

	called := false
	err := m.Sync(context.Background(), func(ctx context.Context, svc brightwheel.Service) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrStateMismatch)
	assert.False(t, called)
}

func TestManagerSyncRunsAgainstSession(t *testing.T) {
	svc := &fakeService{}
	m := NewManager(svc, "cookies.json") // resumes LoggedIn

	var got brightwheel.Service
	err := m.Sync(context.Background(), func(ctx context.Context, s brightwheel.Service) error {
		got = s
		return nil
	})

	require.NoError(t, err)
	assert.Same(t, svc, got)

	wantErr := errors.New("sync failed")
	err = m.Sync(context.Background(), func(ctx context.Context, s brightwheel.Service) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}
