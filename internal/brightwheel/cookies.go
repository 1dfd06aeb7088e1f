package brightwheel

import (
	"encoding/json"
	"net/http"
	"os"
)

// storedCookie is the serialized form of one cookie in the jar file.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveCookies snapshots the cookies for the API origin and writes them to
// path as JSON. Call after a successful login so a later process start can
// resume the session with LoadCookies.
func (c *Client) SaveCookies(path string) error {
	c.cookieMu.Lock()
	cookies := c.jar.Cookies(c.baseURL)
	c.cookieMu.Unlock()

	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return ErrFilesystem.MsgErr("failed to encode cookies", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ErrFilesystem.MsgErr("failed to write cookie file", err)
	}
	return nil
}

// LoadCookies restores a persisted session into the jar. It fails when the
// file is missing, is not valid JSON, or does not contain the session
// cookie; in that case the jar is left untouched and the caller should
// authenticate from scratch.
func (c *Client) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ErrFilesystem.MsgErr("failed to read cookie file", err)
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return ErrFilesystem.MsgErr("cookie file is not valid JSON", err)
	}

	hasSession := false
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		if s.Name == SessionCookieName && s.Value != "" {
			hasSession = true
		}
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	if !hasSession {
		return ErrUnexpectedShape.Msg("cookie file does not contain a session cookie")
	}

	c.cookieMu.Lock()
	c.jar.SetCookies(c.baseURL, cookies)
	c.cookieMu.Unlock()
	return nil
}
