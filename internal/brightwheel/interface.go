package brightwheel

import "context"

// Service defines the interface the rest of the application uses to talk
// to the guardian API. It is implemented by Client; tests substitute fake
// implementations with scripted responses.
type Service interface {
	// StartLogin posts primary credentials to the begin-session endpoint.
	StartLogin(ctx context.Context, email, password string) ([]byte, error)

	// SubmitSession posts credentials, optionally with a one-time code,
	// to the create-session endpoint.
	SubmitSession(ctx context.Context, email, password, code string) ([]byte, error)

	// CurrentUser fetches the account of the authenticated operator.
	CurrentUser(ctx context.Context) ([]byte, error)

	// Children fetches the roster of students the guardian has access to.
	Children(ctx context.Context, userID string) ([]byte, error)

	// ActivityPage fetches one page of a student's activity feed.
	ActivityPage(ctx context.Context, childID string, pageSize, page int) ([]byte, error)

	// DownloadFile streams a GET response body to the destination path.
	DownloadFile(ctx context.Context, url, dest string) error

	// SaveCookies persists the session cookies to a file.
	SaveCookies(path string) error

	// LoadCookies restores persisted session cookies into the jar.
	LoadCookies(path string) error
}

// Compile-time check that the client satisfies the interface.
var _ Service = &Client{}
