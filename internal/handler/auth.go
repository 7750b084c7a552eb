package handler

import (
	"net/http"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/middleware"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc          service.AuthService
	cookieSecure bool
}

func NewAuthHandler(svc service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{svc: svc, cookieSecure: cookieSecure}
}

// Login godoc
// @Summary  Log in
// @Description Verifies the credentials and sets the session cookie.
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body     dto.LoginRequest true "Credentials"
// @Success  200  {object} dto.LoginResponse
// @Failure  401  {object} apierror.APIError
// @Router   /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, resp.ExpiresIn, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary  Log out
// @Tags     auth
// @Success  204
// @Router   /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Status(http.StatusNoContent)
}

// BillingStatus godoc
// @Summary  Subscription status of the caller's tenant
// @Tags     billing
// @Produce  json
// @Success  200 {object} dto.SubscriptionResponse
// @Router   /api/billing/status [get]
func (h *AuthHandler) BillingStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Subscription(c.Request.Context(), actor.TenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
