package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

type sessionKey string

const identityKey = sessionKey("identity")

// RequestToken reads the session token from "Authorization: Bearer" or the
// "token" header.
func RequestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const bearer = "Bearer "
		if len(auth) > len(bearer) && strings.EqualFold(auth[:len(bearer)], bearer) {
			return strings.TrimSpace(auth[len(bearer):])
		}
	}
	return strings.TrimSpace(r.Header.Get("token"))
}

// SessionMiddleware resolves the request token to an identity and puts the
// identity, role and permission into the request context. Requests without
// a token pass through anonymous.
func SessionMiddleware(repos *models.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := RequestToken(c.Request)
		if token == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		identity, err := repos.Accounts.Authenticate(ctx, token)
		if errors.Is(err, models.ErrSessionExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err != nil {
			config.LogError(config.GetLogger(), "sessionMiddleware.go", "SessionMiddleware", "Authenticate", nil, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		access, err := ResolveAccess(ctx, repos, identity)
		if err != nil {
			config.LogError(config.GetLogger(), "sessionMiddleware.go", "SessionMiddleware", "ResolveAccess", identity.UID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		ctx = context.WithValue(ctx, identityKey, identity)
		ctx = utils.SetTokenInContext(ctx, token)
		ctx = utils.SetUserIdInContext(ctx, identity.UID)
		ctx = utils.SetUserEmailInContext(ctx, identity.Email)
		ctx = utils.SetRoleInContext(ctx, string(access.Role))
		ctx = utils.SetPermissionInContext(ctx, string(access.Permission))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ResolveAccess derives the role of identity and the permission that goes
// with it. Admin holds every permission.
func ResolveAccess(ctx context.Context, repos *models.Repositories, identity *models.Identity) (models.Access, error) {
	admin, err := repos.Admin.Get(ctx)
	if err != nil {
		return models.Access{}, err
	}
	role := models.DeriveRole(identity, admin)
	switch role {
	case models.RoleAdmin:
		return models.Access{Role: role, Permission: models.PermissionAll}, nil
	case models.RoleEmployee:
		p, err := repos.Employees.PermissionOf(ctx, identity.UID)
		if err != nil {
			return models.Access{}, err
		}
		return models.Access{Role: role, Permission: p}, nil
	}
	return models.Access{}, nil
}

func IdentityFrom(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey).(*models.Identity)
	return identity
}

func AccessFrom(ctx context.Context) models.Access {
	role, _ := utils.GetRoleFromContext(ctx)
	permission, _ := utils.GetPermissionFromContext(ctx)
	return models.Access{Role: models.Role(role), Permission: models.Permission(permission)}
}
