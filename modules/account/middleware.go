package account

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/anilink/core"
	"github.com/dmitrymomot/anilink/pkg/cookie"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/svc/workspace"
)

// BrowserCookie carries the signed browser id.
const BrowserCookie = "anilink_browser"

// CallbackPath is the AniList redirect target. It must stay reachable
// without a session.
const CallbackPath = "/auth/callback"

// Workspaces attaches the caller's Workspace to the request, issuing a new
// browser id when the cookie is missing or fails verification.
func Workspaces(registry *workspace.Registry, cookies *cookie.Manager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := cookies.GetSigned(r, BrowserCookie)
			if err != nil || uuid.Validate(id) != nil {
				id = uuid.NewString()
				cookies.SetSigned(w, BrowserCookie, id)
				log.DebugContext(r.Context(), "issued browser id",
					logger.Component("account.http"),
					logger.BrowserID(id),
				)
			}

			ws := registry.Get(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(withWorkspace(r.Context(), ws)))
		})
	}
}

// Guard lets a request through only when the browser has a valid session
// and a loaded user. API requests are refused with 401; page requests are
// redirected to "/". CallbackPath is always allowed.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == CallbackPath {
			next.ServeHTTP(w, r)
			return
		}

		ws := WorkspaceFromContext(r.Context())
		if ws != nil && ws.Bridge.IsValid() && ws.Users.Current() != nil {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			_ = core.JSONError(w, core.ErrUnauthorized)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	})
}
