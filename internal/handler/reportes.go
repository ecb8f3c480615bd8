package handler

import (
	"net/http"

	"github.com/JoaquinAb/web-alquiler/internal/apierror"
	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportesHandler serves revenue reports over delivered orders.
type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

func (h *ReportesHandler) filtro(c *gin.Context) (dto.ReporteFilter, bool) {
	var f dto.ReporteFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return f, false
	}
	return f, true
}

func (h *ReportesHandler) responder(c *gin.Context, resp interface{}, err error) {
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Diario godoc
// @Summary Ingresos de un dia (hoy por defecto)
// @Tags reportes
// @Produce json
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} dto.ReporteIngresos
// @Router /reports/daily [get]
func (h *ReportesHandler) Diario(c *gin.Context) {
	f, ok := h.filtro(c)
	if !ok {
		return
	}
	resp, err := h.svc.Diario(c.Request.Context(), f.Date)
	h.responder(c, resp, err)
}

// Semanal godoc
// @Summary Ingresos de la semana (lunes a domingo) que contiene date
// @Tags reportes
// @Produce json
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} dto.ReporteIngresos
// @Router /reports/weekly [get]
func (h *ReportesHandler) Semanal(c *gin.Context) {
	f, ok := h.filtro(c)
	if !ok {
		return
	}
	resp, err := h.svc.Semanal(c.Request.Context(), f.Date)
	h.responder(c, resp, err)
}

// Mensual godoc
// @Summary Ingresos de un mes calendario
// @Tags reportes
// @Produce json
// @Param year query int false "Año"
// @Param month query int false "Mes 1-12"
// @Success 200 {object} dto.ReporteIngresos
// @Router /reports/monthly [get]
func (h *ReportesHandler) Mensual(c *gin.Context) {
	f, ok := h.filtro(c)
	if !ok {
		return
	}
	resp, err := h.svc.Mensual(c.Request.Context(), f.Year, f.Month)
	h.responder(c, resp, err)
}

// Personalizado godoc
// @Summary Ingresos de un rango de fechas inclusivo
// @Tags reportes
// @Produce json
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Success 200 {object} dto.ReporteIngresos
// @Failure 400 {object} apierror.ValidationError
// @Router /reports/custom [get]
func (h *ReportesHandler) Personalizado(c *gin.Context) {
	f, ok := h.filtro(c)
	if !ok {
		return
	}
	resp, err := h.svc.Personalizado(c.Request.Context(), f.StartDate, f.EndDate)
	h.responder(c, resp, err)
}

// Resumen godoc
// @Summary Resumen para el tablero: hoy, semana, mes y pedidos pendientes
// @Tags reportes
// @Produce json
// @Success 200 {object} dto.ResumenResponse
// @Router /reports/summary [get]
func (h *ReportesHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context())
	h.responder(c, resp, err)
}
