package exchange

import (
	"net/http"

	"github.com/dmitrymomot/anilink/core"
	"github.com/dmitrymomot/anilink/pkg/logger"
)

// Handle serves POST {code, redirect_uri}. Errors are written as
// {"error":{"code","message"}} with the status of their class.
func (s *Service) Handle() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			_ = core.JSONError(w, core.ErrMethodNotAllowed)
			return
		}

		var req Request
		if err := core.DecodeJSON(r, &req); err != nil {
			// An unreadable body carries no code.
			_ = core.JSONError(w, ErrMissingCode)
			return
		}

		resp, err := s.Exchange(r.Context(), req)
		if err != nil {
			_ = core.JSONError(w, err)
			return
		}
		if err := core.JSON(w, http.StatusOK, resp); err != nil {
			s.logger.ErrorContext(r.Context(), "failed to write exchange response",
				logger.Component("exchange"),
				logger.Error(err),
			)
		}
	})
}
