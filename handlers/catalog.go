package handlers

import (
	"net/http"

	"bitbucket.org/prajapati/wealth_backend/models"
	"github.com/gin-gonic/gin"
)

type catalogHandlers struct {
	catalog *models.CatalogRepository
}

type nameInput struct {
	Name string `json:"name"`
}

func (h *catalogHandlers) get(c *gin.Context) {
	catalog, err := h.catalog.Get(c.Request.Context())
	if err != nil {
		writeError(c, "getCatalog", err)
		return
	}
	c.JSON(http.StatusOK, catalog.Categories())
}

func (h *catalogHandlers) addCategory(c *gin.Context) {
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if err := h.catalog.AddCategory(c.Request.Context(), input.Name); err != nil {
		writeError(c, "addCategory", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": input.Name})
}

func (h *catalogHandlers) deleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("category")); err != nil {
		writeError(c, "deleteCategory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("category")})
}

func (h *catalogHandlers) addItem(c *gin.Context) {
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	item, err := h.catalog.AddItem(c.Request.Context(), c.Param("category"), input.Name)
	if err != nil {
		writeError(c, "addItem", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *catalogHandlers) editItem(c *gin.Context) {
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if err := h.catalog.EditItem(c.Request.Context(), c.Param("category"), c.Param("itemId"), input.Name); err != nil {
		writeError(c, "editItem", err)
		return
	}
	c.JSON(http.StatusOK, models.CatalogItem{ID: c.Param("itemId"), Name: input.Name})
}

func (h *catalogHandlers) deleteItem(c *gin.Context) {
	if err := h.catalog.DeleteItem(c.Request.Context(), c.Param("category"), c.Param("itemId")); err != nil {
		writeError(c, "deleteItem", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("itemId")})
}
