package account

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/dmitrymomot/anilink/pkg/cookie"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/pkg/requestid"
	"github.com/dmitrymomot/anilink/svc/workspace"
)

// Mountable is a self-contained handler mounted at a fixed path.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions wires the module. Exchange is optional; without it the token
// exchange endpoint is not mounted.
type RouterOptions struct {
	Registry *workspace.Registry
	Cookies  *cookie.Manager
	Exchange Mountable

	// BaseURL is the public origin used to build provider callback URLs,
	// e.g. https://anilink.example.
	BaseURL string
	// AllowedOrigins for CORS. Empty disables CORS handling, so browsers
	// allow same-origin requests only.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Router builds the HTTP surface.
//
//	r := account.Router(account.RouterOptions{
//	    Registry: registry,
//	    Cookies:  cookies,
//	    Exchange: exchange.NewService(cfg),
//	    BaseURL:  "https://anilink.example",
//	})
func Router(opts RouterOptions) chi.Router {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	h := &handlers{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", requestid.Header},
			ExposedHeaders:   []string{requestid.Header},
			AllowCredentials: true,
		}).Handler)
	}

	if opts.Exchange != nil {
		r.Method(http.MethodPost, "/api/anilist/exchange-token", opts.Exchange.Handle())
	}

	r.Group(func(r chi.Router) {
		r.Use(Workspaces(opts.Registry, opts.Cookies, opts.Logger))

		r.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.login)
			auth.Post("/register", h.register)
			auth.Post("/logout", h.logout)
			auth.Post("/refresh", h.refresh)
			auth.Get("/oauth2/{provider}", h.providerLogin)
			auth.Get("/oauth2/{provider}/callback", h.providerCallback)
			auth.Get("/anilist", h.beginAniList)
			auth.Get("/callback", h.aniListCallback)
		})

		r.Get("/api/toasts", h.listToasts)
		r.Delete("/api/toasts/{id}", h.dismissToast)

		r.Route("/api/me", func(me chi.Router) {
			me.Use(Guard)
			me.Get("/", h.me)
			me.Patch("/", h.updateMe)
			me.Delete("/", h.deleteMe)
			me.Post("/email", h.changeEmail)
		})
	})

	return r
}
