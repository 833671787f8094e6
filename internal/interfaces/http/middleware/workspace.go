package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mobilia/backend/internal/domain/identity"
	"github.com/mobilia/backend/internal/domain/shared"
	"github.com/mobilia/backend/internal/infrastructure/logger"
	"github.com/mobilia/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// WorkspaceHeader selects the workspace when the token does not pin one
	WorkspaceHeader = "X-Workspace-ID"

	CapabilityContextKey = "capability_context"
	WorkspaceIDKey       = "workspace_id"
)

// CapabilityMiddleware resolves the workspace and the caller's role in it,
// and stores an identity.CapabilityContext for the handlers. It must run
// after JWTAuthMiddleware.
func CapabilityMiddleware(roles identity.RoleProvider, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		userID, err := claims.UserUUID()
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid user in token")
			return
		}

		workspaceID, problem := resolveWorkspace(c, claims.WorkspaceUUID)
		if problem != "" {
			abortWith(c, http.StatusBadRequest, shared.CodeInvalidInput, problem)
			return
		}

		role, err := roles.GetRole(c.Request.Context(), workspaceID, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				abortWith(c, http.StatusForbidden, dto.ErrCodeNotMember, "You are not a member of this workspace")
				return
			}
			log.Error("Failed to resolve workspace role",
				zap.String("workspace_id", workspaceID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			abortWith(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to resolve workspace role")
			return
		}

		cc, err := identity.NewCapabilityContext(role, userID, workspaceID)
		if err != nil {
			abortWith(c, http.StatusForbidden, shared.CodePrivilegeDenied, "Unknown workspace role")
			return
		}

		c.Set(CapabilityContextKey, cc)
		c.Set(WorkspaceIDKey, workspaceID.String())

		ctx, reqLogger := logger.WithWorkspaceID(c.Request.Context(), logger.GetGinLogger(c), workspaceID.String())
		ctx, reqLogger = logger.WithUserID(ctx, reqLogger, userID.String())
		c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))
		c.Set("logger", reqLogger)

		c.Next()
	}
}

// resolveWorkspace prefers the header, then the token claim. A non-empty
// problem is the message to answer with.
func resolveWorkspace(c *gin.Context, fromClaims func() (uuid.UUID, bool, error)) (id uuid.UUID, problem string) {
	if header := c.GetHeader(WorkspaceHeader); header != "" {
		id, err := uuid.Parse(header)
		if err != nil {
			return uuid.Nil, "Invalid workspace ID format"
		}
		return id, ""
	}
	id, ok, err := fromClaims()
	if err != nil {
		return uuid.Nil, "Invalid workspace ID in token"
	}
	if !ok {
		return uuid.Nil, "Workspace ID is required"
	}
	return id, ""
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, c.GetString("request_id")))
}

// GetCapabilityContext returns the context stored by CapabilityMiddleware
func GetCapabilityContext(c *gin.Context) (identity.CapabilityContext, bool) {
	v, ok := c.Get(CapabilityContextKey)
	if !ok {
		return identity.CapabilityContext{}, false
	}
	cc, ok := v.(identity.CapabilityContext)
	return cc, ok
}

// SetCapabilityContext stores cc on the request; handler tests use it to skip authentication
func SetCapabilityContext(c *gin.Context, cc identity.CapabilityContext) {
	c.Set(CapabilityContextKey, cc)
	c.Set(WorkspaceIDKey, cc.WorkspaceID.String())
}
