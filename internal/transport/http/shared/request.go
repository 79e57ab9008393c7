package shared

import (
	"net"
	"net/http"
	"strings"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/requestctx"
)

// ClientIP prefers the first X-Forwarded-For hop and falls back to the socket peer.
func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// Actor describes the authenticated caller for the audit log.
func Actor(r *http.Request, user auth.UserContext) audit.Actor {
	return audit.Actor{
		TenantID:  user.TenantID,
		UserID:    user.UserID,
		RequestID: requestctx.GetRequestID(r.Context()),
		IP:        ClientIP(r),
	}
}
