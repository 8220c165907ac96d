package handlers

import (
	"errors"
	"net/http"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/forms"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

// statusOf maps an error to the HTTP status it is reported with.
func statusOf(err error) int {
	var fieldErrs forms.Errors
	switch {
	case errors.As(err, &fieldErrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, docstore.ErrNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, models.ErrCatalogItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, docstore.ErrConflict),
		errors.Is(err, models.ErrCategoryExists),
		errors.Is(err, models.ErrEmailAlreadyInUse):
		return http.StatusConflict
	case errors.Is(err, docstore.ErrInvalidArgument),
		errors.Is(err, models.ErrClientNumberImmutable),
		errors.Is(err, models.ErrFamilyMembersAppendOnly),
		errors.Is(err, models.ErrWeakPassword),
		errors.Is(err, models.ErrInvalidEmail),
		errors.Is(err, models.ErrInvalidImage),
		errors.Is(err, models.ErrNoClientIDs),
		errors.Is(err, models.ErrNoRecipients):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrImageStorageDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Server-side failures are logged
// with the request's correlation id.
func writeError(c *gin.Context, funcName string, err error) {
	status := statusOf(err)
	var fieldErrs forms.Errors
	if errors.As(err, &fieldErrs) {
		c.AbortWithStatusJSON(status, gin.H{"errors": fieldErrs})
		return
	}
	if status == http.StatusInternalServerError {
		ctx := c.Request.Context()
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		user, _ := utils.GetUserEmailFromContext(ctx)
		config.LogError(config.GetLogger(), "handlers", funcName, c.Request.Method+" "+c.FullPath(),
			map[string]string{"correlationId": cid, "user": user}, err)
		body := gin.H{"error": err.Error()}
		var profileErr *models.ProfileWriteError
		if errors.As(err, &profileErr) {
			body["uid"] = profileErr.UID
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, body)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
