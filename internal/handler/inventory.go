package handler

import (
	"net/http"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// AdjustStock godoc
// @Summary      Adjust product stock
// @Description  Manual stock edit by delta. The resulting stock may not go below zero.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id   path     string                 true "Product UUID"
// @Param        body body     dto.AdjustStockRequest true "Delta and reason"
// @Success      200  {object} dto.StockMovementResponse
// @Failure      409  {object} apierror.APIError
// @Router       /api/inventory/products/{id}/stock [patch]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovements godoc
// @Summary  List stock movements
// @Tags     inventory
// @Produce  json
// @Param    product_id query string false "Product UUID"
// @Param    kind       query string false "sale | adjustment"
// @Param    page       query int    false "Page"
// @Param    limit      query int    false "Page size"
// @Success  200        {object} dto.StockMovementListResponse
// @Router   /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
