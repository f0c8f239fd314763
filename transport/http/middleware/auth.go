package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/otel"
	"roombook/permissions"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/transport/http/response"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Auth interface {
	// Auth resolves the bearer token into the caller's identity.
	Auth(http.Handler) http.Handler
	// APIKey marks requests carrying the internal key as trusted.
	APIKey(http.Handler) http.Handler
}

type Role interface {
	// RBAC checks the caller's role against the route's allowed roles.
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

var tokenErrors = []struct {
	err     error
	message string
}{
	{err: jwt.ErrExpiredToken, message: "Token has expired"},
	{err: jwt.ErrInvalidToken, message: "Invalid token"},
	{err: jwt.ErrInvalidClaim, message: "Invalid token claims"},
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

func trusted(ctx context.Context) bool {
	internal, _ := ctx.Value(constant.ContextKeyInternal).(bool)

	return internal
}

// routePattern is the chi pattern the request will be dispatched to, such as
// /v1/reservations/{id}.
func routePattern(request *http.Request) string {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil {
		return request.URL.Path
	}

	return rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
}

// rule returns the route's permission entry. Missing config means no entry.
func (m *authRoleImpl) rule(request *http.Request) (permissions.Permission, bool) {
	if m.permission == nil {
		return permissions.Permission{}, false
	}

	if m.permission.Skip {
		return permissions.Permission{Skip: true}, true
	}

	return m.permission.FindPermissions(routePattern(request), request.Method), true
}

func reject(writer http.ResponseWriter, scope otel.Scope, err error) {
	scope.TraceError(err)
	response.WithError(writer, err)
}

func tokenMessage(err error) string {
	for _, known := range tokenErrors {
		if errors.Is(err, known.err) {
			return known.message
		}
	}

	return "Token validation failed"
}

func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		if trusted(ctx) {
			next.ServeHTTP(writer, request)

			return
		}

		if rule, ok := m.rule(request); ok && rule.Skip {
			next.ServeHTTP(writer, request)

			return
		}

		ctx, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.route":      routePattern(request),
			"http.method":     request.Method,
		})

		tokenString, err := jwt.ExtractTokenFromHeader(request.Header.Get(constant.RequestHeaderAuthorization))
		if err != nil {
			reject(writer, scope, failure.Unauthorized("Missing or malformed authorization header"))
			scope.End()

			return
		}

		claims, err := m.jwtService.ValidateToken(ctx, tokenString, jwt.AccessToken)
		if err != nil {
			reject(writer, scope, failure.Unauthorized(tokenMessage(err)))
			scope.End()

			return
		}

		if claims.UserID == constant.Empty || claims.Username == constant.Empty {
			log.Warn().Str("token_id", claims.TokenID).Msg("access token without subject")
			reject(writer, scope, failure.Unauthorized("Invalid token claims"))
			scope.End()

			return
		}

		scope.SetAttribute("user.role", claims.Role)
		scope.End()

		ctx = request.Context()
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUsername, claims.Username)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RBAC denies by default: without a permission config nothing but trusted
// calls get through. Routes with an empty role list admit any authenticated
// caller.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		if trusted(ctx) {
			next.ServeHTTP(writer, request)

			return
		}

		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		rule, ok := m.rule(request)
		if !ok {
			reject(writer, scope, failure.ErrForbidden)

			return
		}

		userRole, _ := ctx.Value(constant.ContextKeyUserRole).(string)

		if !rule.Skip && len(rule.Permissions) > 0 && !slices.Contains(rule.Permissions, userRole) {
			scope.SetAttributes(map[string]any{
				"user_role":     userRole,
				"allowed_roles": rule.Permissions,
			})
			reject(writer, scope, failure.ErrForbidden)

			return
		}

		next.ServeHTTP(writer, request)
	})
}

// APIKey trusts requests whose key matches app.api_key. A request without the
// header continues as an ordinary client call; a wrong key is rejected.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)
		if apiKey == constant.Empty {
			next.ServeHTTP(writer, request)

			return
		}

		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		expected := m.cfg.App.APIKey
		if expected == constant.Empty || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			reject(writer, scope, failure.ErrForbidden)

			return
		}

		scope.SetAttribute("http.source", "internal")

		next.ServeHTTP(writer, request.WithContext(context.WithValue(ctx, constant.ContextKeyInternal, true)))
	})
}
