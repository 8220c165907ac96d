package handlers

import (
	"net/http"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/middlewares"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

type notificationHandlers struct {
	notifications *models.NotificationService
}

type notificationInput struct {
	ClientIDs []string `json:"clientIds"`
}

func (h *notificationHandlers) send(c *gin.Context) {
	var input notificationInput
	if err := c.ShouldBindJSON(&input); err != nil || len(input.ClientIDs) == 0 {
		badRequest(c, "No clients provided.")
		return
	}
	ctx := c.Request.Context()
	requestedBy := ""
	if identity := middlewares.IdentityFrom(ctx); identity != nil {
		requestedBy = identity.UID
	}
	result, err := h.notifications.Request(ctx, input.ClientIDs, requestedBy)
	if err != nil {
		if statusOf(err) != http.StatusInternalServerError {
			writeError(c, "sendNotification", err)
			return
		}
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		config.LogError(config.GetLogger(), "handlers", "sendNotification", "Request", cid, err)
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email."})
		return
	}
	message := "Emails sent successfully!"
	if result.Queued {
		message = "Emails queued for delivery."
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "id": result.ID, "queued": result.Queued})
}

func (h *notificationHandlers) list(c *gin.Context) {
	records, err := h.notifications.Records().List(c.Request.Context())
	if err != nil {
		writeError(c, "listNotifications", err)
		return
	}
	c.JSON(http.StatusOK, records)
}
