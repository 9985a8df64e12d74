package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ovaphlow/pitchfork/service-results-go/pkg/utilities"
)

var errBadToken = errors.New("malformed token")

// newToken produces a token value in the configured style.
func (i *Issuer) newToken(loginID int64, loginType, device string, now time.Time, expiresAt *time.Time) (string, error) {
	switch i.cfg.Style {
	case StyleUUID, "":
		return uuid.NewString(), nil
	case StyleSimpleUUID:
		return strings.ReplaceAll(uuid.NewString(), "-", ""), nil
	case StyleRandom64:
		// 48 random bytes encode to exactly 64 url-safe characters
		b := make([]byte, 48)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		return base64.RawURLEncoding.EncodeToString(b), nil
	case StyleKSUID:
		return utilities.NewKSUID(), nil
	case StyleJWT:
		claims := jwt.MapClaims{
			"sub":        strconv.FormatInt(loginID, 10),
			"jti":        uuid.NewString(),
			"iat":        now.Unix(),
			"login_type": loginType,
			"device":     device,
		}
		if expiresAt != nil {
			claims["exp"] = expiresAt.Unix()
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
	default:
		return "", fmt.Errorf("unknown token style %q", i.cfg.Style)
	}
}

// verifyJWT checks signature and expiry of a jwt-style token.
func (i *Issuer) verifyJWT(token string) error {
	tkn, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(i.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return errBadToken
	}
	return nil
}
