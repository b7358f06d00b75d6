package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the originating client address, preferring proxy
// headers over the socket peer. Entries that do not parse as addresses are
// skipped so a spoofed header cannot smuggle arbitrary strings into
// limiter keys or logs.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, entry := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		candidate := strings.TrimSpace(entry)
		if candidate != "" && net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" && net.ParseIP(ip) != nil {
		return ip
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
