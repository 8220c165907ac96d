// Package handlers serves the dashboard's JSON API.
package handlers

import (
	mw "bitbucket.org/prajapati/wealth_backend/middlewares"
	"bitbucket.org/prajapati/wealth_backend/models"
	"github.com/gin-gonic/gin"
)

func with(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}

// Register mounts the API under /api. The session middleware must run
// before it.
func Register(router gin.IRouter, repos *models.Repositories) {
	api := router.Group("/api")

	auth := &authHandlers{repos: repos}
	api.POST("/auth/signin", auth.signIn)
	api.POST("/auth/signout", auth.signOut)
	api.GET("/auth/me", mw.RequireAuth(), auth.me)
	api.POST("/auth/me/photo", mw.RequireAuth(), auth.setPhoto)

	for _, r := range Resources(repos) {
		registerResource(api, r)
	}

	clients := &clientHandlers{clients: repos.Clients}
	api.GET("/clients/runsheet", mw.RequireAuth(), mw.RequireView("runsheet"), clients.runsheet)
	api.POST("/clients/:id/family-members", mw.RequireAuth(), mw.RequireView("family"), mw.RequireMutation(), clients.addFamilyMember)
	api.POST("/clients/:id/profile-image", mw.RequireAuth(), mw.RequireView("clients"), mw.RequireMutation(), clients.setProfileImage)

	catalog := &catalogHandlers{catalog: repos.Catalog}
	products := api.Group("/product-catalog", mw.RequireAuth())
	products.GET("", catalog.get)
	edit := []gin.HandlerFunc{mw.RequireView("masters.products"), mw.RequireMutation()}
	drop := []gin.HandlerFunc{mw.RequireView("masters.products"), mw.RequireDelete()}
	products.POST("/categories", with(edit, catalog.addCategory)...)
	products.DELETE("/categories/:category", with(drop, catalog.deleteCategory)...)
	products.POST("/categories/:category/items", with(edit, catalog.addItem)...)
	products.PUT("/categories/:category/items/:itemId", with(edit, catalog.editItem)...)
	products.DELETE("/categories/:category/items/:itemId", with(drop, catalog.deleteItem)...)

	notifications := &notificationHandlers{notifications: repos.Notifications}
	api.GET("/notifications", mw.RequireAuth(), mw.RequireView("notifications"), notifications.list)
	api.POST("/notifications", mw.RequireAuth(), mw.RequireView("notifications"), mw.RequireMutation(), notifications.send)
}

// registerResource mounts the collection routes of r. Locations and areas
// feed dropdowns on other screens, so any signed-in user may read them.
func registerResource(api *gin.RouterGroup, r *Resource) {
	g := api.Group("/"+r.Name, mw.RequireAuth())
	var read []gin.HandlerFunc
	if !r.OpenRead {
		read = append(read, mw.RequireView(r.ViewNav))
	}
	write := []gin.HandlerFunc{mw.RequireView(r.ViewNav), mw.RequireMutation()}
	drop := []gin.HandlerFunc{mw.RequireView(r.ViewNav), mw.RequireDelete()}
	if r.AdminWrites {
		write = append(write, mw.RequireAdmin())
		drop = append(drop, mw.RequireAdmin())
	}

	g.GET("", with(read, r.list)...)
	g.GET("/stream", with(read, r.stream)...)
	g.GET("/export", with(read, r.export)...)
	g.GET("/:id", with(read, r.get)...)
	g.POST("", with(write, r.create)...)
	g.PUT("/:id", with(write, r.update)...)
	g.DELETE("/:id", with(drop, r.remove)...)
}
