package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
)

const googleIssuer = "https://accounts.google.com"

var ErrNoEmail = errors.New("token carries no verified email")

// IdentityVerifier turns a raw bearer token into the caller's email.
type IdentityVerifier interface {
	VerifyEmail(ctx context.Context, rawToken string) (string, error)
}

// GoogleVerifier checks Google-issued ID tokens for one OAuth client.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", googleIssuer, err)
	}
	return &GoogleVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (g *GoogleVerifier) VerifyEmail(ctx context.Context, rawToken string) (string, error) {
	token, err := g.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := token.Claims(&claims); err != nil {
		return "", fmt.Errorf("decode claims: %w", err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return "", ErrNoEmail
	}
	return claims.Email, nil
}

// RequireAuth admits requests carrying a valid bearer token. When approved is
// non-empty the token's email must be on it, compared case-insensitively.
func RequireAuth(v IdentityVerifier, approved []string) gin.HandlerFunc {
	allow := make(map[string]struct{}, len(approved))
	for _, e := range approved {
		allow[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing bearer token"})
			return
		}

		email, err := v.VerifyEmail(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			slog.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid token"})
			return
		}

		if len(allow) > 0 {
			if _, ok := allow[strings.ToLower(email)]; !ok {
				slog.Warn("unapproved account", "email", email)
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Account is not approved"})
				return
			}
		}

		c.Set("email", email)
		c.Next()
	}
}
