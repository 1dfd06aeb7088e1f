package brightwheel

import (
	"net/http"

	"github.com/nestsync/nestsync/internal/common/apperrors"
)

var (
	// ErrBrightwheel is the base error for all API client errors.
	ErrBrightwheel apperrors.Error = apperrors.New("brightwheel api error")

	// ErrTransport is returned when a request never produces a usable
	// response. Occurs on network, TLS, or body-read failures.
	ErrTransport apperrors.Error = ErrBrightwheel.New("transport failure").SetStatusCode(http.StatusBadGateway)

	// ErrProtocol is returned when the server answers with a non-2xx status.
	// The status code of the response is carried on the error.
	ErrProtocol apperrors.Error = ErrBrightwheel.New("protocol error")

	// ErrUnexpectedShape is returned when a decoded response is missing an
	// expected field or a field has the wrong type.
	ErrUnexpectedShape apperrors.Error = ErrBrightwheel.New("unexpected response shape").SetStatusCode(http.StatusBadGateway)

	// ErrFilesystem is returned when a downloaded file cannot be created,
	// written, or moved into place.
	ErrFilesystem apperrors.Error = ErrBrightwheel.New("filesystem error").SetStatusCode(http.StatusInternalServerError)
)
