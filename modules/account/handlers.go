package account

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/anilink/core"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/svc/account"
)

var errAniListUnavailable = core.NewHTTPError(http.StatusServiceUnavailable, "anilist_unavailable", "AniList linking is not available")

type handlers struct {
	baseURL string
	logger  *slog.Logger
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailChange struct {
	NewEmail string `json:"newEmail"`
}

// authError turns an account failure into a 400 carrying the user-facing
// message.
func authError(err error) error {
	var ae *account.AuthError
	if errors.As(err, &ae) {
		return core.NewHTTPError(http.StatusBadRequest, string(ae.Op)+"_failed", ae.Message)
	}
	return err
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if he := core.AsHTTPError(err); he.Code >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			logger.Component("account.http"),
			logger.Error(err),
		)
	}
	_ = core.JSONError(w, err)
}

func (h *handlers) writeUser(w http.ResponseWriter, r *http.Request) {
	ws := WorkspaceFromContext(r.Context())
	u := ws.Users.Current()
	if u == nil {
		_ = core.JSONError(w, core.ErrUnauthorized)
		return
	}
	_ = core.JSON(w, http.StatusOK, u)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := core.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	ws := WorkspaceFromContext(r.Context())
	if _, err := ws.Auth.Login(r.Context(), in.Email, in.Password); err != nil {
		h.fail(w, r, authError(err))
		return
	}
	h.writeUser(w, r)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var in account.NewAccount
	if err := core.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	ws := WorkspaceFromContext(r.Context())
	if _, err := ws.Auth.CreateAccount(r.Context(), in); err != nil {
		h.fail(w, r, authError(err))
		return
	}
	h.writeUser(w, r)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	WorkspaceFromContext(r.Context()).Auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	WorkspaceFromContext(r.Context()).Auth.AuthRefresh(r.Context())
	h.writeUser(w, r)
}

func (h *handlers) providerRedirectURL(provider string) string {
	return h.baseURL + "/auth/oauth2/" + url.PathEscape(provider) + "/callback"
}

func (h *handlers) providerLogin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	ws := WorkspaceFromContext(r.Context())

	target, err := ws.Auth.ProviderLoginURL(r.Context(), provider, h.providerRedirectURL(provider))
	if err != nil {
		h.fail(w, r, authError(err))
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *handlers) providerCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	ws := WorkspaceFromContext(r.Context())
	q := r.URL.Query()

	_, err := ws.Auth.LoginWithProvider(r.Context(), provider, account.ProviderCallback{
		Code:  q.Get("code"),
		State: q.Get("state"),
	})
	if err != nil {
		h.logger.InfoContext(r.Context(), "provider login failed",
			logger.Component("account.http"),
			logger.Provider(provider),
			logger.Error(err),
		)
		ws.Toasts.Error(err.Error())
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handlers) beginAniList(w http.ResponseWriter, r *http.Request) {
	target, ok := WorkspaceFromContext(r.Context()).Linker.BeginAuthorization(r.Context())
	if !ok {
		_ = core.JSONError(w, errAniListUnavailable)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *handlers) aniListCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	WorkspaceFromContext(r.Context()).Linker.CompleteAuthorization(r.Context(), q.Get("code"), q.Get("state"))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handlers) listToasts(w http.ResponseWriter, r *http.Request) {
	_ = core.JSON(w, http.StatusOK, WorkspaceFromContext(r.Context()).Toasts.List())
}

func (h *handlers) dismissToast(w http.ResponseWriter, r *http.Request) {
	if !WorkspaceFromContext(r.Context()).Toasts.Dismiss(chi.URLParam(r, "id")) {
		_ = core.JSONError(w, core.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	h.writeUser(w, r)
}

func (h *handlers) updateMe(w http.ResponseWriter, r *http.Request) {
	var patch account.Patch
	if err := core.DecodeJSON(r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := WorkspaceFromContext(r.Context()).Users.Update(r.Context(), patch)
	if err != nil {
		h.fail(w, r, authError(err))
		return
	}
	_ = core.JSON(w, http.StatusOK, u)
}

func (h *handlers) deleteMe(w http.ResponseWriter, r *http.Request) {
	if err := WorkspaceFromContext(r.Context()).Auth.DeleteAccount(r.Context()); err != nil {
		h.fail(w, r, authError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) changeEmail(w http.ResponseWriter, r *http.Request) {
	var in emailChange
	if err := core.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := WorkspaceFromContext(r.Context()).Auth.RequestEmailChange(r.Context(), in.NewEmail); err != nil {
		h.fail(w, r, authError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
