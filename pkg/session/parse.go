package session

import (
	"fmt"
	"strings"
)

// ParseCookies parses manual cookie input in either of the two accepted
// formats: Netscape cookie-file lines (tab-separated) or semicolon
// separated name=value pairs. Input without a non-empty sessionid cookie
// is rejected regardless of how well-formed it is otherwise.
func ParseCookies(input string) ([]Cookie, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty cookie input: %w", ErrNoSessionCookie)
	}

	var cookies []Cookie
	if strings.Contains(input, "\t") {
		var err error
		cookies, err = parseNetscape(input)
		if err != nil {
			return nil, err
		}
	} else {
		cookies = parsePairs(input)
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies parsed: %w", ErrNoSessionCookie)
	}

	session := Session{Cookies: cookies}
	if !session.IsLoggedIn() {
		return nil, ErrNoSessionCookie
	}

	return cookies, nil
}

// parseNetscape parses tab-separated cookie-file lines:
// domain, subdomain flag, path, secure flag, expiry, name, value.
func parseNetscape(input string) ([]Cookie, error) {
	var cookies []Cookie
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			return nil, fmt.Errorf("malformed cookie line %q: expected 7 tab-separated fields, got %d", line, len(fields))
		}

		cookies = append(cookies, Cookie{
			Domain:  fields[0],
			Path:    fields[2],
			Secure:  strings.EqualFold(fields[3], "TRUE"),
			Expires: fields[4],
			Name:    fields[5],
			Value:   fields[6],
		})
	}
	return cookies, nil
}

// parsePairs parses "name=value; name2=value2" input as copied from a
// browser's Cookie header. Fragments without an equals sign are skipped.
func parsePairs(input string) []Cookie {
	var cookies []Cookie
	for _, pair := range strings.Split(input, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !found || name == "" {
			continue
		}
		cookies = append(cookies, Cookie{
			Name:   name,
			Value:  value,
			Domain: defaultCookieDomain,
			Path:   defaultCookiePath,
			Secure: true,
		})
	}
	return cookies
}
