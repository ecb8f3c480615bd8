package handler

import (
	"net/http"

	"github.com/JoaquinAb/web-alquiler/internal/apierror"
	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear godoc
// @Summary Crea un producto del catalogo
// @Tags productos
// @Accept json
// @Produce json
// @Param body body dto.ProductoRequest true "Producto"
// @Success 201 {object} dto.ProductoResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /products [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.ProductoRequest
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
// @Summary Lista productos con filtros y paginacion
// @Tags productos
// @Produce json
// @Param category query string false "Categoria"
// @Param is_active query string false "true | false"
// @Param search query string false "Busca en nombre y descripcion"
// @Param ordering query string false "name, price_per_unit, stock, category (prefijo - para DESC)"
// @Success 200 {object} dto.ProductoListResponse
// @Router /products [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
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

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
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

// Reemplazar handles PUT: name and price_per_unit are required.
func (h *ProductosHandler) Reemplazar(c *gin.Context) { h.actualizar(c, false) }

// ActualizarParcial handles PATCH.
func (h *ProductosHandler) ActualizarParcial(c *gin.Context) { h.actualizar(c, true) }

func (h *ProductosHandler) actualizar(c *gin.Context, parcial bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ProductoRequest
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

// Eliminar godoc
// @Summary Elimina un producto que no figura en ningun pedido
// @Tags productos
// @Param id path int true "ID del producto"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /products/{id} [delete]
func (h *ProductosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Categorias lists the fixed product categories with their labels.
func (h *ProductosHandler) Categorias(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Categorias())
}
