package service

import (
	"context"
	"errors"
	"strings"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for the rental catalog.
type ProductoService interface {
	Crear(ctx context.Context, req dto.ProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	// Actualizar applies a PUT (parcial=false, name and price required) or a PATCH.
	Actualizar(ctx context.Context, id uint, req dto.ProductoRequest, parcial bool) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, id uint) error
	Categorias() []dto.CategoriaResponse
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

const (
	msgCampoRequerido  = "Este campo es requerido."
	msgPrecioPositivo  = "El precio debe ser mayor a 0."
	msgStockNegativo   = "El stock no puede ser negativo."
	msgProductoEnUso   = "No se puede eliminar el producto porque está incluido en pedidos existentes."
	msgCategoriaNoVale = "Categoría inválida."
	msgDecimales       = "Asegúrese de que no haya más de 2 decimales."
)

func (s *productoService) Crear(ctx context.Context, req dto.ProductoRequest) (*dto.ProductoResponse, error) {
	p := &model.Producto{Categoria: model.CategoriaOtros, Activo: true}
	if err := aplicarProducto(p, req, false); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Uint("producto_id", p.ID).Str("categoria", string(p.Categoria)).Msg("producto creado")
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, ErrProductoNoEncontrado)
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	normalizarPagina(&filter.Page, &filter.PageSize)
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	results := make([]dto.ProductoListItem, 0, len(productos))
	for i := range productos {
		p := &productos[i]
		results = append(results, dto.ProductoListItem{
			ID:              p.ID,
			Name:            p.Nombre,
			Category:        string(p.Categoria),
			CategoryDisplay: p.Categoria.Label(),
			PricePerUnit:    p.PrecioPorUnidad,
			Stock:           p.Stock,
			IsActive:        p.Activo,
		})
	}
	return &dto.ProductoListResponse{
		Count:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Results:  results,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uint, req dto.ProductoRequest, parcial bool) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, ErrProductoNoEncontrado)
	}
	if err := aplicarProducto(p, req, parcial); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Uint("producto_id", p.ID).Msg("producto actualizado")
	return productoToResponse(p), nil
}

// Eliminar removes a product unless an order item still references it.
// The explicit count gives a clear message; the RESTRICT foreign key covers
// an item inserted between the count and the delete.
func (s *productoService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, ErrProductoNoEncontrado)
	}
	n, err := s.repo.CountReferencias(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &ReferentialError{Message: msgProductoEnUso}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return &ReferentialError{Message: msgProductoEnUso}
		}
		return noEncontrado(err, ErrProductoNoEncontrado)
	}
	log.Info().Uint("producto_id", id).Msg("producto eliminado")
	return nil
}

func (s *productoService) Categorias() []dto.CategoriaResponse {
	out := make([]dto.CategoriaResponse, 0, len(model.Categorias))
	for _, c := range model.Categorias {
		out = append(out, dto.CategoriaResponse{Value: string(c), Label: c.Label()})
	}
	return out
}

// aplicarProducto copies req onto p, validating every field it touches.
// With parcial=false the fields a full replacement needs must be present.
func aplicarProducto(p *model.Producto, req dto.ProductoRequest, parcial bool) error {
	if !parcial {
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			return invalido("name", msgCampoRequerido)
		}
		if req.PricePerUnit == nil {
			return invalido("price_per_unit", msgCampoRequerido)
		}
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return invalido("name", msgCampoRequerido)
		}
		p.Nombre = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		c := model.Categoria(*req.Category)
		if !c.Valida() {
			return invalido("category", msgCategoriaNoVale)
		}
		p.Categoria = c
	}
	if req.PricePerUnit != nil {
		if !req.PricePerUnit.IsPositive() {
			return invalido("price_per_unit", msgPrecioPositivo)
		}
		if !enCentavos(*req.PricePerUnit) {
			return invalido("price_per_unit", msgDecimales)
		}
		p.PrecioPorUnidad = req.PricePerUnit.Round(2)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return invalido("stock", msgStockNegativo)
		}
		p.Stock = *req.Stock
	}
	if req.Description != nil {
		p.Descripcion = *req.Description
	}
	if req.IsActive != nil {
		p.Activo = *req.IsActive
	}
	return nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:              p.ID,
		Name:            p.Nombre,
		Category:        string(p.Categoria),
		CategoryDisplay: p.Categoria.Label(),
		PricePerUnit:    p.PrecioPorUnidad,
		Stock:           p.Stock,
		Description:     p.Descripcion,
		IsActive:        p.Activo,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// enCentavos reports whether d fits decimal(10,2) without rounding.
func enCentavos(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func normalizarPagina(page, size *int) {
	if *page < 1 {
		*page = 1
	}
	if *size < 1 {
		*size = defaultPageSize
	}
	if *size > maxPageSize {
		*size = maxPageSize
	}
}
