package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/models"
	"budgetbook/internal/service"
)

type ChecklistHandler struct {
	checklist *service.ChecklistService
}

func NewChecklistHandler(checklist *service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklist: checklist}
}

func (h *ChecklistHandler) List(c *gin.Context) {
	month, year, ok := periodQuery(c)
	if !ok {
		return
	}

	items, err := h.checklist.ListChecklistItems(c.Request.Context(), userID(c), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type ChecklistItemRequest struct {
	Name  string `json:"name" validate:"required,notblank"`
	Group string `json:"group"`
	Month int    `json:"month" validate:"required,gte=1,lte=12"`
	Year  int    `json:"year" validate:"required,gte=1970"`
}

func (h *ChecklistHandler) Add(c *gin.Context) {
	var req ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.checklist.AddChecklistItem(c.Request.Context(), userID(c), service.ChecklistItemInput{
		Name:  req.Name,
		Group: req.Group,
		Month: req.Month,
		Year:  req.Year,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type UpdateChecklistItemRequest struct {
	Name      *string `json:"name"`
	Group     *string `json:"group"`
	Completed *bool   `json:"completed"`
}

func (h *ChecklistHandler) Update(c *gin.Context) {
	var req UpdateChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	item, err := h.checklist.UpdateChecklistItem(c.Request.Context(), userID(c), c.Param("id"), service.ChecklistItemUpdate{
		Name:      req.Name,
		Group:     req.Group,
		Completed: req.Completed,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ChecklistHandler) Delete(c *gin.Context) {
	if err := h.checklist.DeleteChecklistItem(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Stream pushes the caller's checklist for ?month&year over SSE: one
// event with the current snapshot, then one for every change, until the
// client disconnects.
func (h *ChecklistHandler) Stream(c *gin.Context) {
	month, year, ok := periodQuery(c)
	if !ok {
		return
	}

	h.stream(c, func(onUpdate func([]models.ChecklistItem)) (func(), error) {
		return h.checklist.SubscribeChecklist(c.Request.Context(), userID(c), month, year, onUpdate)
	})
}

type ChecklistShareRequest struct {
	Group string `json:"group"`
	Month int    `json:"month" validate:"required,gte=1,lte=12"`
	Year  int    `json:"year" validate:"required,gte=1970"`
}

// CreateShare mints a share link for the caller's checklist; an empty
// group shares the whole period.
func (h *ChecklistHandler) CreateShare(c *gin.Context) {
	var req ChecklistShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	share, err := h.checklist.CreateChecklistShare(c.Request.Context(), userID(c), req.Group, req.Month, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, share)
}

// ResolveShare is public: possession of the share id is the credential.
func (h *ChecklistHandler) ResolveShare(c *gin.Context) {
	share, err := h.checklist.ResolveChecklistShare(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, share)
}

// StreamShared is the public SSE stream behind a share link.
func (h *ChecklistHandler) StreamShared(c *gin.Context) {
	share, err := h.checklist.ResolveChecklistShare(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.stream(c, func(onUpdate func([]models.ChecklistItem)) (func(), error) {
		return h.checklist.SubscribeSharedChecklist(c.Request.Context(), share, onUpdate)
	})
}

// ToggleShared flips an item's completed flag through a share link.
func (h *ChecklistHandler) ToggleShared(c *gin.Context) {
	item, err := h.checklist.ToggleSharedItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ChecklistHandler) stream(c *gin.Context, subscribe func(func([]models.ChecklistItem)) (func(), error)) {
	updates := make(chan []models.ChecklistItem, 8)
	cancel, err := subscribe(func(items []models.ChecklistItem) {
		// Snapshots supersede each other, so a slow consumer drops the
		// oldest buffered one rather than blocking the broadcast.
		for {
			select {
			case updates <- items:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case items := <-updates:
			c.SSEvent("checklist", items)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
