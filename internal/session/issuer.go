// Package session issues login tokens and resolves them back to login ids.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultLoginType = "login"
	DefaultDevice    = "default-device"
)

// ErrNotLoggedIn is returned for unknown, revoked or expired tokens.
var ErrNotLoggedIn = errors.New("not logged in")

// TokenInfo is returned to the client after a successful login.
type TokenInfo struct {
	TokenName  string `json:"tokenName"`
	TokenValue string `json:"tokenValue"`
	IsLogin    bool   `json:"isLogin"`
	LoginID    int64  `json:"loginId"`
	LoginType  string `json:"loginType"`
	// TokenTimeout is in seconds, -1 when the token never expires.
	TokenTimeout int64  `json:"tokenTimeout"`
	LoginDevice  string `json:"loginDevice"`
}

// Authorizer supplies permission codes and role names for a login id.
type Authorizer interface {
	PermissionsFor(loginID int64, loginType string) []string
	RolesFor(loginID int64, loginType string) []string
}

// NoopAuthorizer grants nothing. There is no role model yet.
type NoopAuthorizer struct{}

func (NoopAuthorizer) PermissionsFor(int64, string) []string { return []string{} }
func (NoopAuthorizer) RolesFor(int64, string) []string       { return []string{} }

// Issuer creates and resolves sessions against an injected Store.
type Issuer struct {
	cfg   Config
	store Store
	authz Authorizer
	now   func() time.Time
}

func NewIssuer(cfg Config, store Store, authz Authorizer) (*Issuer, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.TokenName == "" {
		cfg.TokenName = "satoken"
	}
	switch cfg.Style {
	case "", StyleUUID, StyleSimpleUUID, StyleRandom64, StyleKSUID:
	case StyleJWT:
		if cfg.Secret == "" {
			return nil, errors.New("TOKEN_SECRET is required for jwt tokens")
		}
	default:
		return nil, fmt.Errorf("unknown token style %q", cfg.Style)
	}
	if authz == nil {
		authz = NoopAuthorizer{}
	}
	return &Issuer{cfg: cfg, store: store, authz: authz, now: time.Now}, nil
}

func (i *Issuer) TokenName() string { return i.cfg.TokenName }

// Issue creates a new token for loginID. Any earlier session of the same login id is dropped.
func (i *Issuer) Issue(ctx context.Context, loginID int64, device string) (*TokenInfo, error) {
	if device == "" {
		device = DefaultDevice
	}
	now := i.now().UTC()
	var expiresAt *time.Time
	timeout := int64(-1)
	if i.cfg.Timeout > 0 {
		t := now.Add(i.cfg.Timeout)
		expiresAt = &t
		timeout = int64(i.cfg.Timeout / time.Second)
	}
	token, err := i.newToken(loginID, DefaultLoginType, device, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s := &Session{
		Token:     token,
		LoginID:   loginID,
		LoginType: DefaultLoginType,
		Device:    device,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := i.replace(ctx, s); err != nil {
		return nil, err
	}
	return &TokenInfo{
		TokenName:    i.cfg.TokenName,
		TokenValue:   token,
		IsLogin:      true,
		LoginID:      loginID,
		LoginType:    DefaultLoginType,
		TokenTimeout: timeout,
		LoginDevice:  device,
	}, nil
}

// replace leaves s as the only session of its login.
func (i *Issuer) replace(ctx context.Context, s *Session) error {
	if r, ok := i.store.(Replacer); ok {
		if err := r.Replace(ctx, s); err != nil {
			return fmt.Errorf("replace sessions: %w", err)
		}
		return nil
	}
	if err := i.store.DeleteByLoginID(ctx, s.LoginID); err != nil {
		return fmt.Errorf("drop previous sessions: %w", err)
	}
	if err := i.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Lookup resolves a token to its login id.
func (i *Issuer) Lookup(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrNotLoggedIn
	}
	if i.cfg.Style == StyleJWT {
		if err := i.verifyJWT(token); err != nil {
			return 0, ErrNotLoggedIn
		}
	}
	s, err := i.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return 0, ErrNotLoggedIn
		}
		return 0, err
	}
	if s.Expired(i.now()) {
		_ = i.store.Delete(ctx, token)
		return 0, ErrNotLoggedIn
	}
	return s.LoginID, nil
}

// Revoke ends the session identified by token. Unknown tokens are ignored.
func (i *Issuer) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return i.store.Delete(ctx, token)
}

// PermissionsFor never fails and never returns nil.
func (i *Issuer) PermissionsFor(loginID int64) []string {
	if p := i.authz.PermissionsFor(loginID, DefaultLoginType); p != nil {
		return p
	}
	return []string{}
}

// RolesFor never fails and never returns nil.
func (i *Issuer) RolesFor(loginID int64) []string {
	if r := i.authz.RolesFor(loginID, DefaultLoginType); r != nil {
		return r
	}
	return []string{}
}

// WriteCookie stores the token in a cookie named after the token.
func (i *Issuer) WriteCookie(w http.ResponseWriter, info *TokenInfo) {
	c := &http.Cookie{
		Name:     i.cfg.TokenName,
		Value:    info.TokenValue,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if info.TokenTimeout > 0 {
		c.MaxAge = int(info.TokenTimeout)
	}
	http.SetCookie(w, c)
}

// ClearCookie expires the token cookie.
func (i *Issuer) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: i.cfg.TokenName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}
