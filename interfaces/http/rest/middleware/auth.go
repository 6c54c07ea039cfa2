package middleware

import (
	"net/http"
	"strings"

	"lifelog/pkg/auth"
	"lifelog/pkg/common"

	"go.uber.org/zap"
)

// Gateway headers set by the Lambda entry point after API Gateway's JWT
// authorizer accepted the request
const (
	HeaderGatewayAuthorized = "X-API-Gateway-Authorized"
	HeaderUserID            = "X-User-ID"
	HeaderUserEmail         = "X-User-Email"
	HeaderUserRoles         = "X-User-Roles"
)

// AuthConfig configures the authentication middleware
type AuthConfig struct {
	Validator *auth.JWTValidator
	// TrustGateway accepts the gateway headers instead of a bearer token.
	// Only enable it behind API Gateway.
	TrustGateway bool
	IPLimiter    auth.RateLimiter
	UserLimiter  auth.RateLimiter
	Logger       *zap.Logger
}

// Authenticate creates an authentication middleware with per-IP and per-user
// rate limiting
func Authenticate(cfg AuthConfig) func(next http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			if !allow(cfg.IPLimiter, r, clientIP, cfg.Logger) {
				respondWithError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "Rate limit exceeded")
				return
			}

			user, ok := resolveUser(w, r, cfg)
			if !ok {
				return
			}

			if !allow(cfg.UserLimiter, r, user.UserID, cfg.Logger) {
				respondWithError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "User rate limit exceeded")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), user)
			ctx = common.WithUserID(ctx, user.UserID)
			ctx = common.WithUserRoles(ctx, user.Roles)

			cfg.Logger.Debug("Request authenticated",
				zap.String("user_id", user.UserID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(w http.ResponseWriter, r *http.Request, cfg AuthConfig) (*auth.UserContext, bool) {
	if cfg.TrustGateway && r.Header.Get(HeaderGatewayAuthorized) == "true" {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			respondUnauthorized(w, "Missing user context from API Gateway")
			return nil, false
		}
		roles := []string{"authenticated"}
		if raw := r.Header.Get(HeaderUserRoles); raw != "" {
			roles = strings.Split(raw, ",")
		}
		return &auth.UserContext{UserID: userID, Email: r.Header.Get(HeaderUserEmail), Roles: roles}, true
	}

	if cfg.Validator == nil {
		respondUnauthorized(w, "Authentication not configured")
		return nil, false
	}

	token := extractToken(r)
	if token == "" {
		respondUnauthorized(w, "Missing authentication token")
		return nil, false
	}

	claims, err := cfg.Validator.ValidateToken(token)
	if err != nil {
		cfg.Logger.Warn("Invalid token",
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)
		switch err {
		case auth.ErrExpiredToken:
			respondUnauthorized(w, "Token has expired")
		case auth.ErrInvalidSignature:
			respondUnauthorized(w, "Invalid token signature")
		default:
			respondUnauthorized(w, "Invalid token")
		}
		return nil, false
	}

	roles := claims.Roles
	if len(roles) == 0 {
		roles = []string{"authenticated"}
	}
	return &auth.UserContext{UserID: claims.UserID, Email: claims.Email, Roles: roles}, true
}

// allow fails open on limiter errors
func allow(limiter auth.RateLimiter, r *http.Request, key string, logger *zap.Logger) bool {
	if limiter == nil {
		return true
	}
	allowed, err := limiter.Allow(r.Context(), key)
	if err != nil {
		logger.Warn("Rate limiter error", zap.Error(err))
	}
	return allowed
}

// extractToken reads the bearer token from the Authorization header or the
// auth_token cookie
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, message)
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	common.RespondError(w, status, code, message)
}

// RequireRole creates middleware that requires one of the given roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := auth.GetUserFromContext(r.Context()); err != nil {
				respondUnauthorized(w, "Unauthorized")
				return
			}

			for _, role := range roles {
				if common.HasRole(r.Context(), role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, common.StandardErrorCodes.Forbidden, "Insufficient permissions")
		})
	}
}
