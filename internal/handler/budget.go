package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/service"
)

type BudgetHandler struct {
	budgets *service.BudgetService
	sharing *service.SharingService
}

func NewBudgetHandler(budgets *service.BudgetService, sharing *service.SharingService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, sharing: sharing}
}

// GetBudget returns the budget the caller sees for ?month&year, owned or
// shared, or JSON null when no budget exists for the period yet.
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	month, year, ok := periodQuery(c)
	if !ok {
		return
	}

	budget, err := h.budgets.GetBudget(c.Request.Context(), userID(c), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

type PeriodRequest struct {
	Month int `json:"month" validate:"required,gte=1,lte=12"`
	Year  int `json:"year" validate:"required,gte=1970"`
}

func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := h.budgets.CreateBudget(c.Request.Context(), userID(c), req.Month, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

// CopyPreviousMonth seeds the requested month from the one before it.
func (h *BudgetHandler) CopyPreviousMonth(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budget, err := h.budgets.CopyPreviousMonthBudget(c.Request.Context(), userID(c), req.Month, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

type BudgetItemRequest struct {
	BudgetID string  `json:"budgetId" validate:"required"`
	Name     string  `json:"name" validate:"required,notblank"`
	Amount   float64 `json:"amount" validate:"gte=0"`
}

func (h *BudgetHandler) AddItem(c *gin.Context) {
	var req BudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.budgets.AddBudgetItem(c.Request.Context(), userID(c), req.BudgetID, req.Name, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type UpdateBudgetItemRequest struct {
	Name   string  `json:"name" validate:"required,notblank"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

func (h *BudgetHandler) UpdateItem(c *gin.Context) {
	var req UpdateBudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.budgets.UpdateBudgetItem(c.Request.Context(), userID(c), c.Param("id"), req.Name, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *BudgetHandler) DeleteItem(c *gin.Context) {
	if err := h.budgets.DeleteBudgetItem(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RepairItem recomputes an item's spent total from its transactions.
func (h *BudgetHandler) RepairItem(c *gin.Context) {
	item, err := h.budgets.RepairItemSpent(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type ShareRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *BudgetHandler) Share(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sharing.ShareBudget(c.Request.Context(), userID(c), c.Param("id"), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BudgetHandler) Unshare(c *gin.Context) {
	err := h.sharing.UnshareBudget(c.Request.Context(), userID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *BudgetHandler) Members(c *gin.Context) {
	profiles, err := h.sharing.GetSharedMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}
