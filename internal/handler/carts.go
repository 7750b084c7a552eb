package handler

import (
	"net/http"

	"github.com/Safwa9amar/safwanPos-sub000/internal/apierror"
	"github.com/Safwa9amar/safwanPos-sub000/internal/cart"
	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// maxDraftsBody caps PUT /api/carts payloads.
const maxDraftsBody = 1 << 20

type CartsHandler struct{ svc service.CartService }

func NewCartsHandler(svc service.CartService) *CartsHandler { return &CartsHandler{svc: svc} }

// Get godoc
// @Summary  Load the caller's cart drafts
// @Tags     carts
// @Produce  json
// @Success  200 {object} cart.Drafts
// @Router   /api/carts [get]
func (h *CartsHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	drafts, err := h.svc.Load(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	writeDrafts(c, drafts)
}

// Replace godoc
// @Summary      Replace the caller's cart drafts
// @Description  Accepts any supported envelope version and stores it at the current one.
// @Tags         carts
// @Accept       json
// @Produce      json
// @Success      200 {object} cart.Drafts
// @Failure      400 {object} apierror.APIError
// @Router       /api/carts [put]
func (h *CartsHandler) Replace(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDraftsBody)
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("payload too large"))
		return
	}
	drafts, err := h.svc.Replace(c.Request.Context(), actor.UserID, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	writeDrafts(c, drafts)
}

// Apply godoc
// @Summary  Apply one action to a named cart
// @Tags     carts
// @Accept   json
// @Produce  json
// @Param    name path     string                true "Cart name"
// @Param    body body     dto.CartActionRequest true "Action"
// @Success  200  {object} dto.CartResponse
// @Failure  404  {object} apierror.APIError
// @Router   /api/carts/{name}/actions [post]
func (h *CartsHandler) Apply(c *gin.Context) {
	var req dto.CartActionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Apply(c.Request.Context(), actor, c.Param("name"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartsHandler) Remove(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	drafts, err := h.svc.Remove(c.Request.Context(), actor.UserID, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	writeDrafts(c, drafts)
}

// Checkout godoc
// @Summary      Check out a named cart
// @Description  Completes a sale from the cart lines. The cart is removed only when the sale commits.
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        name path     string                  true  "Cart name"
// @Param        body body     dto.CartCheckoutRequest false "Payment details"
// @Success      201  {object} dto.SaleResult
// @Failure      409  {object} dto.SaleResult
// @Router       /api/carts/{name}/checkout [post]
func (h *CartsHandler) Checkout(c *gin.Context) {
	var req dto.CartCheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.SaleResult{Error: "invalid JSON: " + err.Error()})
			return
		}
		if fields := validationFields(&req); fields != nil {
			c.JSON(http.StatusUnprocessableEntity, dto.SaleResult{Error: validationSummary(fields)})
			return
		}
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	sale, err := h.svc.Checkout(c.Request.Context(), actor, c.Param("name"), req)
	if err != nil {
		status := errorStatus(err)
		c.JSON(status, dto.SaleResult{Error: errorMessage(c, err, status)})
		return
	}
	c.JSON(http.StatusCreated, dto.SaleResult{Success: true, Sale: sale})
}

func writeDrafts(c *gin.Context, drafts cart.Drafts) {
	data, err := cart.Encode(drafts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
