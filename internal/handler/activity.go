package handler

import (
	"net/http"
	"strconv"

	"inventory-rest-api/internal/service"
	"inventory-rest-api/pkg/response"
)

// ActivityHandler serves the inventory audit trail.
type ActivityHandler struct {
	inventoryService *service.InventoryService
}

func NewActivityHandler(inventoryService *service.InventoryService) *ActivityHandler {
	return &ActivityHandler{
		inventoryService: inventoryService,
	}
}

// List returns paginated activity, newest first.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	activity, total, err := h.inventoryService.ListActivity(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, activity, page, limit, total)
}
