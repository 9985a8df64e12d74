package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/page"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/result"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/session"
)

// Handler exposes HTTP endpoints for user operations (register / login / list).
// Domain failures are reported with HTTP 200 and the code in the envelope.
type Handler struct {
	svc    *UserService
	issuer *session.Issuer
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, issuer *session.Issuer, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, issuer: issuer, logger: logger}
}

// CredentialsRequest is the body of both login and register.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Device   string `json:"device,omitempty"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid credentials payload", "err", err)
		result.Write(w, http.StatusBadRequest, result.Fail(http.StatusBadRequest, "invalid payload"))
		return req, false
	}
	return req, true
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.logger.Debugw("login failed", "username", req.Username)
			result.Write(w, http.StatusOK, result.Fail(http.StatusNotFound, ErrNotFound.Error()))
			return
		}
		h.logger.Errorw("login failed", "err", err)
		result.Write(w, http.StatusInternalServerError, result.Fail(http.StatusInternalServerError, "login failed"))
		return
	}
	info, err := h.issuer.Issue(r.Context(), u.ID, req.Device)
	if err != nil {
		h.logger.Errorw("issue token failed", "user_id", u.ID, "err", err)
		result.Write(w, http.StatusInternalServerError, result.Fail(http.StatusInternalServerError, "login failed"))
		return
	}
	h.logger.Infow("user logged in", "user_id", u.ID)
	h.issuer.WriteCookie(w, info)
	result.Write(w, http.StatusOK, result.OK(http.StatusOK, "student", info))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		var ve *page.ValidationError
		switch {
		case errors.Is(err, ErrAlreadyExists):
			result.Write(w, http.StatusOK, result.Fail(http.StatusBadRequest, ErrAlreadyExists.Error()))
		case errors.As(err, &ve):
			result.Write(w, http.StatusOK, result.Fail(http.StatusBadRequest, ve.Error()))
		default:
			h.logger.Errorw("register failed", "err", err)
			result.Write(w, http.StatusInternalServerError, result.Fail(http.StatusInternalServerError, "register failed"))
		}
		return
	}
	h.logger.Infow("user registered", "user_id", u.ID)
	result.Write(w, http.StatusOK, result.OK(http.StatusCreated, "user added", nil))
}

// List serves GET /users?current=&size=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	current, err := queryInt(r, "current", 1)
	if err != nil {
		result.Write(w, http.StatusOK, result.Fail(http.StatusBadRequest, "invalid current"))
		return
	}
	size, err := queryInt(r, "size", 10)
	if err != nil {
		result.Write(w, http.StatusOK, result.Fail(http.StatusBadRequest, "invalid size"))
		return
	}
	p, err := h.svc.ListUsers(r.Context(), current, size)
	if err != nil {
		var ve *page.ValidationError
		if errors.As(err, &ve) {
			result.Write(w, http.StatusOK, result.Fail(http.StatusBadRequest, ve.Error()))
			return
		}
		h.logger.Errorw("list users failed", "err", err)
		result.Write(w, http.StatusInternalServerError, result.Fail(http.StatusInternalServerError, "list users failed"))
		return
	}
	result.Write(w, http.StatusOK, result.OK(http.StatusOK, "ok", p))
}

func queryInt(r *http.Request, key string, def int64) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
