// Package brightwheel implements the client for the Brightwheel guardian
// web API. It covers the session endpoints used for authentication, the
// current-user and child-roster lookups, the paginated activity feed, and
// raw media downloads. The client owns the cookie jar that carries the
// authenticated session and can persist it to a file so a later process
// start can resume without re-authenticating.
//
// All methods are blocking and synchronous. A non-2xx response or a
// malformed body is surfaced as a typed error, never swallowed.
package brightwheel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// DefaultBaseURL is the guardian API base used by the web application.
	DefaultBaseURL = "https://schools.mybrightwheel.com/api/v1/"

	// SessionCookieName is the cookie that carries the authenticated session.
	SessionCookieName = "_brightwheel_v2"

	originURL  = "https://schools.mybrightwheel.com"
	refererURL = "https://schools.mybrightwheel.com/sign-in"
	userAgent  = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:139.0) Gecko/20100101 Firefox/139.0"

	clientVersion = "106"
	clientName    = "web"

	requestTimeout = 30 * time.Second
)

// Client makes requests to the Brightwheel guardian API. It holds the
// HTTP transport bound to a persistent cookie jar and the fixed header
// set the web application sends on every request.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	// downloadClient shares the jar but has no overall timeout; a large
	// video must not be cut off mid-transfer. Cancellation comes from
	// the request context.
	downloadClient *http.Client
	jar            *cookiejar.Jar

	// cookieMu serializes cookie-jar snapshots against the request path.
	// Snapshots are taken under this lock, not whatever lock the caller
	// holds, so file I/O never happens inside a foreign critical section.
	cookieMu sync.Mutex
}

// NewClient creates a client for the given API base URL. An empty baseURL
// selects the production guardian API. The client starts with an empty
// cookie jar; use LoadCookies to restore a persisted session.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: requestTimeout,
		},
		downloadClient: &http.Client{
			Jar: jar,
		},
		jar: jar,
	}, nil
}

// StartLogin posts primary credentials to the begin-session endpoint.
// It does not establish a full session; the response tells the caller
// whether a second factor is required.
func (c *Client) StartLogin(ctx context.Context, email, password string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "sessions/start", nil, authPayload(email, password, ""))
}

// SubmitSession posts credentials, optionally with a one-time code, to the
// create-session endpoint. On success the server sets the session cookie.
func (c *Client) SubmitSession(ctx context.Context, email, password, code string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "sessions", nil, authPayload(email, password, code))
}

// CurrentUser fetches the account of the authenticated operator.
func (c *Client) CurrentUser(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "users/me", nil, nil)
}

// Children fetches the roster of students the guardian has access to.
func (c *Client) Children(ctx context.Context, userID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "guardians/"+userID+"/students", nil, nil)
}

// ActivityPage fetches one page of a student's activity feed. Pages are
// requested with a fixed page_size and a zero-based offset that the caller
// increments by one per call.
func (c *Client) ActivityPage(ctx context.Context, childID string, pageSize, page int) ([]byte, error) {
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(pageSize))
	q.Set("offset", strconv.Itoa(page))
	return c.do(ctx, http.MethodGet, "students/"+childID+"/activities", q, nil)
}

// authPayload builds the JSON body the session endpoints expect. The
// one-time code is included only when non-empty.
func authPayload(email, password, code string) []byte {
	payload := []byte(`{}`)
	payload, _ = sjson.SetBytes(payload, "user.email", email)
	payload, _ = sjson.SetBytes(payload, "user.password", password)
	if code != "" {
		payload, _ = sjson.SetBytes(payload, "2fa_code", code)
	}
	return payload
}

// do makes a request to an API endpoint and returns the response body.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body []byte) ([]byte, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, endpoint)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, ErrTransport.MsgErr("failed to create request", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrTransport.MsgErr("request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrTransport.MsgErr("failed to read response body", err)
	}

	if resp.StatusCode >= 400 {
		return nil, protocolError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// setHeaders applies the fixed header set the web application sends.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Version", clientVersion)
	req.Header.Set("X-Client-Name", clientName)
	req.Header.Set("Origin", originURL)
	req.Header.Set("Referer", refererURL)
	req.Header.Set("User-Agent", userAgent)
}

// protocolError builds an ErrProtocol from a non-2xx response, preferring
// the server's own error message when the body carries one.
func protocolError(status int, body []byte) error {
	msg := gjson.GetBytes(body, "error").String()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return ErrProtocol.Msg(fmt.Sprintf("server returned %d: %s", status, msg)).SetStatusCode(status)
}
