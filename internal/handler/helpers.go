package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/JoaquinAb/web-alquiler/internal/apierror"
	"github.com/JoaquinAb/web-alquiler/internal/infra"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON name, the one clients sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads the :id path parameter. Writes 400 and returns false when it
// is not a positive integer.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return 0, false
	}
	return uint(id), true
}

// responderError maps service errors to HTTP responses. Unknown errors are
// attached to the context and answered as 500 by middleware.ErrorHandler.
func responderError(c *gin.Context, err error) {
	var (
		ve *service.ValidationError
		se *service.StateError
		re *service.ReferentialError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, apierror.NewField(ve.Field, ve.Message))
	case errors.As(err, &se):
		c.JSON(http.StatusBadRequest, apierror.New(se.Message))
	case errors.As(err, &re):
		c.JSON(http.StatusConflict, apierror.New(re.Message))
	case errors.Is(err, service.ErrPedidoNoEncontrado), errors.Is(err, service.ErrProductoNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCredencialesInvalidas),
		errors.Is(err, service.ErrCuentaDesactivada),
		errors.Is(err, service.ErrNoAutenticado):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCorreoNoConfigurado):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	case errors.Is(err, infra.ErrCircuitOpen):
		c.JSON(http.StatusServiceUnavailable, apierror.New("El servicio de correo no está disponible. Intente más tarde."))
	default:
		_ = c.Error(err)
	}
}
