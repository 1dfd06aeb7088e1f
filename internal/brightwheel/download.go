package brightwheel

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/h2non/filetype"
	"github.com/rs/zerolog/log"
)

const (
	downloadAttempts = 3
	downloadDelay    = 500 * time.Millisecond
)

// DownloadFile streams a GET response body to the given destination path.
// The body is written to a temporary file in the destination directory and
// renamed into place on success, so a failed download never leaves a
// partial file at the destination. Transient transport failures are
// retried with backoff; server error responses are not.
func (c *Client) DownloadFile(ctx context.Context, rawURL, dest string) error {
	return retry.Do(
		func() error {
			return c.downloadOnce(ctx, rawURL, dest)
		},
		retry.Context(ctx),
		retry.Attempts(downloadAttempts),
		retry.Delay(downloadDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrTransport)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("url", rawURL).Msg("retrying download")
		}),
	)
}

func (c *Client) downloadOnce(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ErrTransport.MsgErr("failed to create request", err)
	}
	// Media lives on a CDN, not the API origin; only the user agent is sent.
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return ErrTransport.MsgErr("download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return protocolError(resp.StatusCode, body)
	}
	return writeFile(resp.Body, dest)
}

// writeFile streams body to dest through a temporary file, flushing and
// closing the handle on every exit path.
func writeFile(body io.Reader, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return ErrFilesystem.MsgErr("failed to create temp file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	head := make([]byte, 261)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		cleanup()
		return ErrTransport.MsgErr("failed to read download body", err)
	}
	head = head[:n]
	checkMediaType(head, dest)

	if _, err := tmp.Write(head); err != nil {
		cleanup()
		return ErrFilesystem.MsgErr("failed to write file", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		cleanup()
		return ErrTransport.MsgErr("failed to stream download body", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return ErrFilesystem.MsgErr("failed to flush file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ErrFilesystem.MsgErr("failed to close file", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return ErrFilesystem.MsgErr("failed to move file into place", err)
	}
	return nil
}

// checkMediaType warns when the downloaded bytes do not look like the
// media type the destination extension implies. The file is kept either
// way; the mismatch only indicates the feed descriptor was unusual.
func checkMediaType(head []byte, dest string) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return
	}
	want := strings.TrimPrefix(filepath.Ext(dest), ".")
	if kind.Extension != want {
		log.Warn().
			Str("path", dest).
			Str("detected", kind.Extension).
			Msg("downloaded media does not match expected type")
	}
}
