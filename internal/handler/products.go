package handler

import (
	"net/http"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// GetByBarcode godoc
// @Summary  Look up a product by barcode
// @Tags     products
// @Produce  json
// @Param    barcode path     string true "Barcode"
// @Success  200     {object} dto.ProductResponse
// @Failure  404     {object} apierror.APIError
// @Router   /api/products/barcode/{barcode} [get]
func (h *ProductsHandler) GetByBarcode(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByBarcode(c.Request.Context(), actor.TenantID, c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body     dto.CreateProductRequest true "Product"
// @Success  201  {object} dto.ProductResponse
// @Failure  409  {object} apierror.APIError
// @Failure  422  {object} apierror.ValidationError
// @Router   /api/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actor.TenantID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), actor.TenantID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *ProductsHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *ProductsHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var err error
	if active {
		err = h.svc.Reactivate(c.Request.Context(), actor.TenantID, id)
	} else {
		err = h.svc.Deactivate(c.Request.Context(), actor.TenantID, id)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
