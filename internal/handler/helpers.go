package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// newValidator builds the shared validator with decimal.Decimal registered
// as a numeric type, so tags like min=0 and gt=0 work on money fields
// instead of panicking with "Bad field type decimal.Decimal".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		d, ok := field.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})
	return v
}

// bindAndValidate decodes the JSON body into req and runs its validator
// tags. On failure it writes the error response and returns false; the
// handler must not write anything else.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest,
			apierror.New(apierror.CodeValidation, "JSON invalido: %s", err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		fields := make(map[string]string)
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.ValidationFields(fields))
		return false
	}
	return true
}

// respondError translates a service error into its HTTP response. Typed
// domain errors carry their own status; anything else becomes a generic 500
// and is logged by the ErrorHandler middleware via c.Error.
func respondError(c *gin.Context, err error) {
	if e := apierror.From(err); e != nil {
		c.JSON(apierror.HTTPStatus(e), e)
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError,
		apierror.New(apierror.CodeInternal, "Error interno del servidor"))
}

// parseID reads the :id path param as a UUID, writing the 422 on failure.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity,
			apierror.New(apierror.CodeValidation, "ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}
