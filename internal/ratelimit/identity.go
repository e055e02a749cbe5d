package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIdentity is used when neither a forwarded address nor a connection
// address can be determined.
const UnknownIdentity = "unknown"

// IdentityFromRequest derives the caller identity used for the per-identity
// window: the first X-Forwarded-For entry, else the connection address.
func IdentityFromRequest(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return UnknownIdentity
}
