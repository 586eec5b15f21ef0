package proxy

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// OriginGuard accepts only URLs under one allowed base URL: same scheme,
// same host and a path inside the base path.
type OriginGuard struct {
	scheme string
	host   string
	prefix string
}

func NewOriginGuard(base string) (*OriginGuard, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("proxy: invalid allowed origin %q", base)
	}
	prefix := strings.TrimSuffix(u.EscapedPath(), "/")
	return &OriginGuard{
		scheme: u.Scheme,
		host:   strings.ToLower(u.Host),
		prefix: prefix,
	}, nil
}

// Check parses raw and returns it when it lies under the allowed base.
func (g *OriginGuard) Check(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingURL
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, ErrInvalidURL
	}
	if u.User != nil || u.Scheme != g.scheme || strings.ToLower(u.Host) != g.host {
		return nil, ErrForbidden
	}

	// Clean resolves dot segments so ../ cannot climb out of the prefix.
	p := path.Clean("/" + u.EscapedPath())
	if g.prefix != "" && p != g.prefix && !strings.HasPrefix(p, g.prefix+"/") {
		return nil, ErrForbidden
	}
	if lower := strings.ToLower(p); strings.Contains(lower, "%2f") || strings.Contains(lower, "%2e") {
		return nil, ErrForbidden
	}
	return u, nil
}
