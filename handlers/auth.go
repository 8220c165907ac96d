package handlers

import (
	"context"
	"io"
	"net/http"

	"bitbucket.org/prajapati/wealth_backend/middlewares"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

type authHandlers struct {
	repos *models.Repositories
}

type signInInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is what the dashboard needs to render for the signed-in user.
type Session struct {
	Token      string            `json:"token,omitempty"`
	User       *models.Identity  `json:"user"`
	Role       models.Role       `json:"role"`
	Permission models.Permission `json:"permission,omitempty"`
	Navigation []models.NavItem  `json:"navigation"`
	Actions    models.ActionSet  `json:"actions"`
}

func newSession(token string, identity *models.Identity, access models.Access) Session {
	return Session{
		Token:      token,
		User:       identity,
		Role:       access.Role,
		Permission: access.Permission,
		Navigation: models.ComposeNavigation(access.Role),
		Actions:    models.ComposeActions(access.Role, access.Permission),
	}
}

func (h *authHandlers) signIn(c *gin.Context) {
	var input signInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	ctx := c.Request.Context()
	token, identity, err := h.repos.Accounts.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		writeError(c, "signIn", err)
		return
	}
	access, err := middlewares.ResolveAccess(ctx, h.repos, identity)
	if err != nil {
		writeError(c, "signIn", err)
		return
	}
	c.JSON(http.StatusOK, newSession(token, identity, access))
}

func (h *authHandlers) signOut(c *gin.Context) {
	ctx := c.Request.Context()
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok {
		token = middlewares.RequestToken(c.Request)
	}
	if err := h.repos.Accounts.SignOut(ctx, token); err != nil {
		writeError(c, "signOut", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (h *authHandlers) me(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, newSession("", middlewares.IdentityFrom(ctx), middlewares.AccessFrom(ctx)))
}

// setPhoto replaces the signed-in user's own profile photo.
func (h *authHandlers) setPhoto(c *gin.Context) {
	image, closeImage, err := uploadedImage(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeImage()
	ctx := c.Request.Context()
	ref, err := h.replacePhoto(ctx, middlewares.IdentityFrom(ctx).UID, image)
	if err != nil {
		writeError(c, "setPhoto", err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *authHandlers) replacePhoto(ctx context.Context, uid string, image io.Reader) (*models.ObjectRef, error) {
	if h.repos.Images == nil {
		return nil, models.ErrImageStorageDisabled
	}
	account, err := h.repos.Accounts.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	ref, err := h.repos.Images.Replace(ctx, uid, account.Photo, image)
	if err != nil {
		return nil, err
	}
	if err := h.repos.Accounts.SetPhoto(ctx, uid, ref); err != nil {
		return nil, err
	}
	return ref, nil
}
