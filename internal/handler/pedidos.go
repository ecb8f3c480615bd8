package handler

import (
	"fmt"
	"net/http"

	"github.com/JoaquinAb/web-alquiler/internal/apierror"
	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"github.com/gin-gonic/gin"
)

type PedidosHandler struct {
	svc      service.PedidoService
	facturas service.FacturaService
}

func NewPedidosHandler(svc service.PedidoService, facturas service.FacturaService) *PedidosHandler {
	return &PedidosHandler{svc: svc, facturas: facturas}
}

// Crear godoc
// @Summary Crea un pedido con sus items
// @Description Los precios unitarios se congelan al crear: un unit_price ausente o 0 toma el precio del catalogo.
// @Tags pedidos
// @Accept json
// @Produce json
// @Param body body dto.CrearPedidoRequest true "Pedido"
// @Success 201 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /orders [post]
func (h *PedidosHandler) Crear(c *gin.Context) {
	var req dto.CrearPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista pedidos
// @Tags pedidos
// @Produce json
// @Param status query string false "pendiente | entregado | cancelado"
// @Param start_date query string false "YYYY-MM-DD, sobre event_date"
// @Param end_date query string false "YYYY-MM-DD, sobre event_date"
// @Param search query string false "Nombre o telefono del cliente"
// @Param ordering query string false "created_at, event_date, delivery_date, status (prefijo - para DESC)"
// @Success 200 {object} dto.PedidoListResponse
// @Router /orders [get]
func (h *PedidosHandler) Listar(c *gin.Context) {
	var filter dto.PedidoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) Pendientes(c *gin.Context) { h.porEstado(c, model.EstadoPendiente) }

func (h *PedidosHandler) Entregados(c *gin.Context) { h.porEstado(c, model.EstadoEntregado) }

func (h *PedidosHandler) porEstado(c *gin.Context, estado model.EstadoPedido) {
	resp, err := h.svc.ListarPorEstado(c.Request.Context(), estado)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) Reemplazar(c *gin.Context) { h.actualizar(c, false) }

func (h *PedidosHandler) ActualizarParcial(c *gin.Context) { h.actualizar(c, true) }

func (h *PedidosHandler) actualizar(c *gin.Context, parcial bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req, parcial)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela un pedido (no lo borra)
// @Tags pedidos
// @Produce json
// @Param id path int true "ID del pedido"
// @Success 200 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.APIError "El pedido ya está cancelado."
// @Router /orders/{id} [delete]
func (h *PedidosHandler) Cancelar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado godoc
// @Summary Cambia el estado de un pedido
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path int true "ID del pedido"
// @Param body body dto.CambiarEstadoRequest true "Nuevo estado"
// @Success 200 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /orders/{id}/change_status [patch]
func (h *PedidosHandler) CambiarEstado(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CambiarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary Descarga el comprobante del pedido en PDF
// @Tags pedidos
// @Produce application/pdf
// @Param id path int true "ID del pedido"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /orders/{id}/pdf [get]
func (h *PedidosHandler) PDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	f, err := h.facturas.Generar(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Filename))
	c.Data(http.StatusOK, "application/pdf", f.Contenido)
}

// EnviarFactura godoc
// @Summary Envia el comprobante PDF por correo
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path int true "ID del pedido"
// @Param body body dto.EnviarFacturaRequest true "Destinatario"
// @Success 200 {object} dto.MessageResponse
// @Failure 503 {object} apierror.APIError
// @Router /orders/{id}/send_invoice [post]
func (h *PedidosHandler) EnviarFactura(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.EnviarFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.facturas.Enviar(c.Request.Context(), id, req); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Factura enviada a " + req.Email})
}
