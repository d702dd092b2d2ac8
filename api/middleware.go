package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/config"
	"github.com/Benevo-clic/benevoclic-api/identity"
	"github.com/Benevo-clic/benevoclic-api/models"
)

// tokenCacheTTL bounds how long a verified token skips signature and user checks
const tokenCacheTTL = 5 * time.Minute

type userKey struct{}

// Claims are the bearer token claims issued by the identity provider
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens and resolves the user behind them
type Authenticator struct {
	secret   []byte
	issuer   string
	resolver identity.Resolver
	guardian auth.Authenticator
}

// NewAuthenticator sets up go-guardian with a cached bearer strategy backed by JWT verification
func NewAuthenticator(conf config.JWTConfig, resolver identity.Resolver) *Authenticator {
	a := &Authenticator{
		secret:   []byte(conf.Secret),
		issuer:   conf.Issuer,
		resolver: resolver,
	}
	cache := store.NewFIFO(context.Background(), tokenCacheTTL)
	a.guardian = auth.New()
	a.guardian.EnableStrategy(bearer.CachedStrategyKey, bearer.New(a.verify, cache))
	return a
}

// verify checks the token signature and claims then loads the user by subject, falling
// back to the email claim
func (a *Authenticator) verify(ctx context.Context, r *http.Request, tokenString string) (auth.Info, error) {
	if len(a.secret) == 0 {
		return nil, errors.New("token verification is not configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}), jwt.WithExpirationRequired()}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	user, err := a.resolver.ResolveUserByID(ctx, claims.Subject)
	if errors.Is(err, apperrors.ErrNotFound) && claims.Email != "" {
		user, err = a.resolver.ResolveUserByEmail(ctx, claims.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("unknown user: %w", err)
	}
	return auth.NewDefaultUser(user.Email, user.ID, []string{user.Role}, nil), nil
}

// Middleware rejects requests without a valid bearer token and stores the user in the request context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.guardian.Authenticate(r)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.String(), "error", err)
			config.AppErrorStatus(w, apperrors.ErrUnauthorized)
			return
		}
		zap.S().Debugw("user authenticated", "userId", user.ID())
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireRole only lets through users holding one of roles. It must run after Middleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				config.AppErrorStatus(w, apperrors.ErrUnauthorized)
				return
			}
			if hasRole(user, roles...) {
				next.ServeHTTP(w, r)
				return
			}
			config.AppErrorStatus(w, apperrors.ErrForbidden)
		})
	}
}

// RequireSelfOrAdmin allows a user to act on their own person id. Admins may act on anyone.
func RequireSelfOrAdmin(ctx context.Context, personID string) error {
	user, ok := UserFromContext(ctx)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	if user.ID() == personID || hasRole(user, models.RoleAdmin) {
		return nil
	}
	return apperrors.ErrForbidden
}

func hasRole(user auth.Info, roles ...string) bool {
	for _, group := range user.Groups() {
		for _, role := range roles {
			if group == role {
				return true
			}
		}
	}
	return false
}

// WithUser stores an authenticated user in ctx
func WithUser(ctx context.Context, user auth.Info) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user stored by Middleware
func UserFromContext(ctx context.Context) (auth.Info, bool) {
	user, ok := ctx.Value(userKey{}).(auth.Info)
	return user, ok
}
