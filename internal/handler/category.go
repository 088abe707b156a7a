package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/models"
	"budgetbook/internal/service"
)

type CategoryHandler struct {
	cats *service.CategoryService
}

func NewCategoryHandler(cats *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{cats: cats}
}

func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.cats.ListCategories(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

type CategoryRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required,notblank"`
}

// Save creates a category, or renames one when an id is given.
func (h *CategoryHandler) Save(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.cats.SaveCategory(c.Request.Context(), userID(c), models.Category{ID: req.ID, Name: req.Name})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.cats.DeleteCategory(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
