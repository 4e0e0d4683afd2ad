package exchange

import (
	"net/http"

	"github.com/dmitrymomot/anilink/core"
)

var (
	ErrMissingCode    = core.NewHTTPError(http.StatusBadRequest, "missing_code", "Authorization code is required")
	ErrNotConfigured  = core.NewHTTPError(http.StatusInternalServerError, "not_configured", "AniList credentials not configured on server")
	ErrExchangeFailed = core.NewHTTPError(http.StatusInternalServerError, "exchange_failed", "Failed to exchange authorization code for access token")
)
