package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// CompleteSale godoc
// @Summary      Complete a sale
// @Description  Validates the cart, decrements stock atomically and records the sale. The body may be a bare array of lines.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body dto.CompleteSaleRequest true "Cart lines"
// @Success      201  {object} dto.SaleResult
// @Failure      400  {object} dto.SaleResult
// @Failure      404  {object} dto.SaleResult
// @Failure      409  {object} dto.SaleResult
// @Failure      500  {object} dto.SaleResult
// @Router       /api/sales [post]
func (h *SalesHandler) CompleteSale(c *gin.Context) {
	var req dto.CompleteSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.SaleResult{Error: "invalid JSON: " + err.Error()})
		return
	}
	if fields := validationFields(&req); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.SaleResult{Error: validationSummary(fields)})
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	sale, err := h.svc.CompleteSale(c.Request.Context(), actor, req)
	if err != nil {
		status := errorStatus(err)
		c.JSON(status, dto.SaleResult{Error: errorMessage(c, err, status)})
		return
	}
	c.JSON(http.StatusCreated, dto.SaleResult{Success: true, Sale: sale})
}

// ListSales godoc
// @Summary      List sales
// @Description  Paginated sales history, newest first.
// @Tags         sales
// @Produce      json
// @Param        from  query string false "From date YYYY-MM-DD"
// @Param        to    query string false "To date YYYY-MM-DD"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Page size (default 50)"
// @Success      200   {object} dto.SaleListResponse
// @Failure      400   {object} apierror.APIError
// @Failure      422   {object} apierror.ValidationError
// @Router       /api/sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSale godoc
// @Summary  Get a sale with its lines
// @Tags     sales
// @Produce  json
// @Param    id  path     string true "Sale UUID"
// @Success  200 {object} dto.SaleResponse
// @Failure  404 {object} apierror.APIError
// @Router   /api/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt godoc
// @Summary  Download the PDF receipt of a sale
// @Tags     sales
// @Produce  application/pdf
// @Param    id  path string true "Sale UUID"
// @Success  200 {file} binary
// @Failure  404 {object} apierror.APIError
// @Router   /api/sales/{id}/receipt.pdf [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	receipt, err := h.svc.Receipt(c.Request.Context(), actor.TenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt_%s.pdf"`, id))
	if receipt.Path != "" {
		c.File(receipt.Path)
		return
	}
	c.Data(http.StatusOK, "application/pdf", receipt.Data)
}

func validationSummary(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Strings(names)
	msg := "validation failed"
	for _, field := range names {
		msg += fmt.Sprintf("; %s: %s", field, fields[field])
	}
	return msg
}
