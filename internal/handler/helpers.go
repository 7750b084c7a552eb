package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/Safwa9amar/safwanPos-sub000/internal/apierror"
	"github.com/Safwa9amar/safwanPos-sub000/internal/middleware"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0 and required work on money fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the caller
// should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if fields := validationFields(req); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds and validates query string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	if fields := validationFields(filter); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

func validationFields(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	} else {
		fields["_"] = err.Error()
	}
	return fields
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom builds the service actor from the gate's claims.
func actorFrom(c *gin.Context) (service.Actor, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("authentication required"))
		return service.Actor{}, false
	}
	tenantID, terr := uuid.Parse(claims.TenantID)
	userID, uerr := uuid.Parse(claims.UserID)
	if terr != nil || uerr != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("malformed session"))
		return service.Actor{}, false
	}
	return service.Actor{TenantID: tenantID, UserID: userID}, true
}

// errorStatus maps business errors to HTTP statuses. Unknown errors are 500.
func errorStatus(err error) int {
	var insufficient *service.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidInput),
		service.IsCartPayloadError(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrDuplicateBarcode),
		errors.Is(err, service.ErrNegativeStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides internal details behind a generic message for 5xx.
func errorMessage(c *gin.Context, err error, status int) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	log.Error().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Err(err).
		Msg("request failed")
	if errors.Is(err, service.ErrSaleFailed) {
		return service.ErrSaleFailed.Error()
	}
	return "internal server error"
}

// respondError writes the standard {detail} envelope for err.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	c.JSON(status, apierror.New(errorMessage(c, err, status)))
}
