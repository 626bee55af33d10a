package session

import (
	"errors"
	"strings"
)

// Cookie is a single authentication cookie.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly"`
	Expires  string `json:"expires,omitempty"`
}

// Session is the full persisted authentication state. It is saved and
// replaced wholesale; individual cookies are never updated in place.
type Session struct {
	Cookies  []Cookie `json:"cookies"`
	Username string   `json:"username,omitempty"`
}

const (
	sessionCookieName = "sessionid"
	userIDCookieName  = "ds_user_id"

	defaultCookieDomain = ".instagram.com"
	defaultCookiePath   = "/"
)

// Errors
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoSessionCookie  = errors.New("no sessionid cookie found")
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// IsLoggedIn reports whether the session holds a sessionid cookie with a
// non-empty value. This is the only login criterion.
func (s *Session) IsLoggedIn() bool {
	for _, c := range s.Cookies {
		if c.Name == sessionCookieName && c.Value != "" {
			return true
		}
	}
	return false
}

// DerivedUsername returns the value of the ds_user_id cookie, the fallback
// identity when no explicit username was supplied on save.
func (s *Session) DerivedUsername() string {
	for _, c := range s.Cookies {
		if c.Name == userIDCookieName && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// ExportNetscape serializes the cookie set in Netscape cookie-file format,
// one tab-separated line per cookie. The second return is false when the
// session holds no cookies, so callers can treat "no auth" as a
// first-class case rather than an empty header.
func (s *Session) ExportNetscape() (string, bool) {
	if len(s.Cookies) == 0 {
		return "", false
	}

	var b strings.Builder
	for _, c := range s.Cookies {
		domain := c.Domain
		if domain == "" {
			domain = defaultCookieDomain
		}
		path := c.Path
		if path == "" {
			path = defaultCookiePath
		}

		includeSubdomains := "FALSE"
		if strings.HasPrefix(domain, ".") {
			includeSubdomains = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}

		// Expiry is not tracked; "0" marks a session cookie.
		fields := []string{domain, includeSubdomains, path, secure, "0", c.Name, c.Value}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteString("\n")
	}
	return b.String(), true
}

// Sanitize returns a copy of the session with cookie values masked, safe
// for display and logs.
func (s *Session) Sanitize() Session {
	out := Session{Username: s.Username, Cookies: make([]Cookie, len(s.Cookies))}
	for i, c := range s.Cookies {
		masked := c
		masked.Value = maskValue(c.Value)
		out.Cookies[i] = masked
	}
	return out
}

func maskValue(v string) string {
	if len(v) <= 8 {
		return "********"
	}
	return v[:4] + "..." + v[len(v)-4:]
}
