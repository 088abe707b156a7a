package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/models"
	"budgetbook/internal/service"
)

type TransactionHandler struct {
	txs *service.TransactionService
}

func NewTransactionHandler(txs *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txs: txs}
}

type TransactionRequest struct {
	Description  string  `json:"description" validate:"required,notblank"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Date         string  `json:"date" validate:"required,dateonly"`
	BudgetItemID string  `json:"budgetItemId"`
	CategoryID   string  `json:"categoryId"`
}

func (r TransactionRequest) input() service.TransactionInput {
	return service.TransactionInput{
		Description:  r.Description,
		Amount:       r.Amount,
		Date:         r.Date,
		BudgetItemID: r.BudgetItemID,
		CategoryID:   r.CategoryID,
	}
}

// transactionResponse wraps a transaction with the optional
// reconciliation warning. The warning means the record was written but a
// linked spent total could not be adjusted; the client should prompt a
// repair rather than retry the write.
type transactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
	Warning     string              `json:"warning,omitempty"`
}

func (h *TransactionHandler) List(c *gin.Context) {
	month, year, ok := periodQuery(c)
	if !ok {
		return
	}

	txs, err := h.txs.ListTransactions(c.Request.Context(), userID(c), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.txs.AddTransaction(c.Request.Context(), userID(c), req.input())
	if err != nil && !service.IsWarning(err) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionResponse{Transaction: tx, Warning: warningText(err)})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.txs.UpdateTransaction(c.Request.Context(), userID(c), c.Param("id"), req.input())
	if err != nil && !service.IsWarning(err) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionResponse{Transaction: tx, Warning: warningText(err)})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	err := h.txs.DeleteTransaction(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil && !service.IsWarning(err) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "warning": warningText(err)})
}

func warningText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
