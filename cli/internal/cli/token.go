package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opsx/collab/shared/logger"
)

// tokenExpiryWarning is how close to expiry a token triggers a warning.
const tokenExpiryWarning = 10 * time.Minute

// jwtExpiresAt reads the exp claim without verifying the token. The CLI does
// not hold the signing key.
func jwtExpiresAt(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// checkToken rejects missing or expired tokens before any network call.
// Tokens without an exp claim are accepted as-is.
func checkToken(token string) error {
	return checkTokenAt(token, time.Now())
}

func checkTokenAt(token string, now time.Time) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("missing token; set OPSX_TOKEN or mint one with `opsx-server token`")
	}
	exp, ok := jwtExpiresAt(token)
	if !ok {
		return nil
	}
	if !now.Before(exp) {
		return fmt.Errorf("token expired at %s", exp.Format(time.RFC3339))
	}
	if exp.Sub(now) <= tokenExpiryWarning {
		logger.Warnf("Token expires at %s", exp.Format(time.RFC3339))
	}
	return nil
}
