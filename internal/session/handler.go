package session

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/result"
)

// Handler exposes logout and current-session endpoints.
type Handler struct {
	issuer *Issuer
	logger *zap.SugaredLogger
}

func NewHandler(issuer *Issuer, logger *zap.SugaredLogger) *Handler {
	return &Handler{issuer: issuer, logger: logger}
}

// CurrentResponse describes the caller's session.
type CurrentResponse struct {
	LoginID     int64    `json:"loginId"`
	TokenName   string   `json:"tokenName"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Current must run behind RequireLogin.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	loginID, ok := LoginIDFromContext(r.Context())
	if !ok {
		result.Write(w, http.StatusUnauthorized, result.Fail(http.StatusUnauthorized, "not logged in"))
		return
	}
	result.Write(w, http.StatusOK, result.OK(http.StatusOK, "ok", CurrentResponse{
		LoginID:     loginID,
		TokenName:   h.issuer.TokenName(),
		Roles:       h.issuer.RolesFor(loginID),
		Permissions: h.issuer.PermissionsFor(loginID),
	}))
}

// Logout must run behind RequireLogin.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := TokenFromRequest(r, h.issuer.TokenName())
	if err := h.issuer.Revoke(r.Context(), token); err != nil {
		h.logger.Warnw("logout failed", "err", err)
		result.Write(w, http.StatusInternalServerError, result.Fail(http.StatusInternalServerError, "logout failed"))
		return
	}
	h.issuer.ClearCookie(w)
	result.Write(w, http.StatusOK, result.OK(http.StatusOK, "logged out", nil))
}
