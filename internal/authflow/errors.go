package authflow

import (
	"net/http"

	"github.com/nestsync/nestsync/internal/common/apperrors"
)

var (
	// ErrAuth is the base error for authentication failures.
	ErrAuth apperrors.Error = apperrors.New("authentication error")

	// ErrStateMismatch is returned when an operation is invoked against a
	// state that does not support it. The existing state is not mutated.
	ErrStateMismatch apperrors.Error = ErrAuth.New("operation not valid in current state").SetStatusCode(http.StatusConflict)
)
