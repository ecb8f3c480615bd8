package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PedidoService interface {
	Crear(ctx context.Context, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	ListarPorEstado(ctx context.Context, estado model.EstadoPedido) ([]dto.PedidoListItem, error)
	// Actualizar applies a PUT (parcial=false) or a PATCH. Supplied items replace the whole set.
	Actualizar(ctx context.Context, id uint, req dto.ActualizarPedidoRequest, parcial bool) (*dto.PedidoResponse, error)
	CambiarEstado(ctx context.Context, id uint, req dto.CambiarEstadoRequest) (*dto.PedidoResponse, error)
	// Cancelar replaces physical deletion: the order is kept with status cancelado.
	Cancelar(ctx context.Context, id uint) (*dto.PedidoResponse, error)
}

type pedidoService struct {
	repo         repository.PedidoRepository
	productoRepo repository.ProductoRepository
}

func NewPedidoService(repo repository.PedidoRepository, productoRepo repository.ProductoRepository) PedidoService {
	return &pedidoService{repo: repo, productoRepo: productoRepo}
}

const (
	msgEntregaPosterior   = "La fecha de entrega no puede ser posterior al evento."
	msgDevolucionAnterior = "La fecha de devolución no puede ser anterior al evento."
	msgSinItems           = "El pedido debe tener al menos un producto."
	msgCantidadPositiva   = "La cantidad debe ser mayor a 0."
	msgPrecioNegativo     = "El precio unitario no puede ser negativo."
	msgPedidoCancelado    = "No se puede cambiar el estado de un pedido cancelado."
	msgYaCancelado        = "El pedido ya está cancelado."
	msgEstadoInvalido     = "Estado inválido."
	msgFechaInvalida      = "Formato de fecha inválido. Use YYYY-MM-DD"
)

// ── Crear ─────────────────────────────────────────────────────────────────────
//   1. Validate customer, dates and item list
//   2. Resolve products and freeze unit prices (pre-flight, outside TX)
//   3. BEGIN TX: insert order + items. COMMIT
//   4. Reload with products for the response

func (s *pedidoService) Crear(ctx context.Context, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	nombre := strings.TrimSpace(req.CustomerName)
	if nombre == "" {
		return nil, invalido("customer_name", msgCampoRequerido)
	}
	if len(req.Items) == 0 {
		return nil, invalido("items", msgSinItems)
	}

	evento, err := parseFecha("event_date", req.EventDate)
	if err != nil {
		return nil, err
	}
	entrega, err := parseFecha("delivery_date", req.DeliveryDate)
	if err != nil {
		return nil, err
	}
	devolucion, err := parseFecha("return_date", req.ReturnDate)
	if err != nil {
		return nil, err
	}
	if err := validarFechas(entrega, evento, devolucion); err != nil {
		return nil, err
	}

	items, err := s.resolverItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	pedido := &model.Pedido{
		ClienteNombre:    nombre,
		ClienteTelefono:  req.CustomerPhone,
		ClienteDireccion: req.CustomerAddress,
		FechaEvento:      evento,
		FechaEntrega:     entrega,
		FechaDevolucion:  devolucion,
		Estado:           model.EstadoPendiente,
		Observaciones:    req.Observations,
		Items:            items,
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, pedido)
	}); err != nil {
		return nil, fmt.Errorf("crear pedido: %w", err)
	}

	log.Info().Uint("pedido_id", pedido.ID).Int("items", len(items)).Msg("pedido creado")
	return s.ObtenerPorID(ctx, pedido.ID)
}

func (s *pedidoService) ObtenerPorID(ctx context.Context, id uint) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, ErrPedidoNoEncontrado)
	}
	return pedidoToResponse(p), nil
}

func (s *pedidoService) Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	normalizarPagina(&filter.Page, &filter.PageSize)

	var desde, hasta *time.Time
	if filter.StartDate != "" {
		d, err := parseFecha("start_date", filter.StartDate)
		if err != nil {
			return nil, err
		}
		desde = &d
	}
	if filter.EndDate != "" {
		h, err := parseFecha("end_date", filter.EndDate)
		if err != nil {
			return nil, err
		}
		hasta = &h
	}

	pedidos, total, err := s.repo.List(ctx, filter, desde, hasta)
	if err != nil {
		return nil, err
	}
	return &dto.PedidoListResponse{
		Count:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Results:  pedidosToListItems(pedidos),
	}, nil
}

func (s *pedidoService) ListarPorEstado(ctx context.Context, estado model.EstadoPedido) ([]dto.PedidoListItem, error) {
	pedidos, err := s.repo.ListByEstado(ctx, estado)
	if err != nil {
		return nil, err
	}
	return pedidosToListItems(pedidos), nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Only the status field is guarded once an order is cancelado; the remaining
// fields of a cancelled order stay editable.

func (s *pedidoService) Actualizar(ctx context.Context, id uint, req dto.ActualizarPedidoRequest, parcial bool) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, ErrPedidoNoEncontrado)
	}

	if !parcial {
		switch {
		case req.CustomerName == nil:
			return nil, invalido("customer_name", msgCampoRequerido)
		case req.EventDate == nil:
			return nil, invalido("event_date", msgCampoRequerido)
		case req.DeliveryDate == nil:
			return nil, invalido("delivery_date", msgCampoRequerido)
		case req.ReturnDate == nil:
			return nil, invalido("return_date", msgCampoRequerido)
		case req.Items == nil:
			return nil, invalido("items", msgCampoRequerido)
		}
	}

	if req.Status != nil {
		nuevo := model.EstadoPedido(*req.Status)
		if !nuevo.Valido() {
			return nil, invalido("status", msgEstadoInvalido)
		}
		if p.Estado == model.EstadoCancelado && nuevo != model.EstadoCancelado {
			return nil, invalido("status", msgPedidoCancelado)
		}
		p.Estado = nuevo
	}

	if req.CustomerName != nil {
		nombre := strings.TrimSpace(*req.CustomerName)
		if nombre == "" {
			return nil, invalido("customer_name", msgCampoRequerido)
		}
		p.ClienteNombre = nombre
	}
	if req.CustomerPhone != nil {
		p.ClienteTelefono = *req.CustomerPhone
	}
	if req.CustomerAddress != nil {
		p.ClienteDireccion = *req.CustomerAddress
	}
	if req.Observations != nil {
		p.Observaciones = *req.Observations
	}
	if req.EventDate != nil {
		if p.FechaEvento, err = parseFecha("event_date", *req.EventDate); err != nil {
			return nil, err
		}
	}
	if req.DeliveryDate != nil {
		if p.FechaEntrega, err = parseFecha("delivery_date", *req.DeliveryDate); err != nil {
			return nil, err
		}
	}
	if req.ReturnDate != nil {
		if p.FechaDevolucion, err = parseFecha("return_date", *req.ReturnDate); err != nil {
			return nil, err
		}
	}
	if err := validarFechas(p.FechaEntrega, p.FechaEvento, p.FechaDevolucion); err != nil {
		return nil, err
	}

	var nuevos []model.PedidoItem
	if req.Items != nil {
		if len(*req.Items) == 0 {
			return nil, invalido("items", msgSinItems)
		}
		if nuevos, err = s.resolverItems(ctx, *req.Items); err != nil {
			return nil, err
		}
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, p); err != nil {
			return err
		}
		if req.Items != nil {
			return s.repo.ReplaceItems(ctx, tx, p.ID, nuevos)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("actualizar pedido %d: %w", id, err)
	}

	evt := log.Info().Uint("pedido_id", p.ID).Str("estado", string(p.Estado))
	if req.Items != nil {
		evt = evt.Int("items", len(nuevos))
	}
	evt.Msg("pedido actualizado")

	return s.ObtenerPorID(ctx, p.ID)
}

func (s *pedidoService) CambiarEstado(ctx context.Context, id uint, req dto.CambiarEstadoRequest) (*dto.PedidoResponse, error) {
	nuevo := model.EstadoPedido(req.Status)
	if !nuevo.Valido() {
		return nil, invalido("status", msgEstadoInvalido)
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, ErrPedidoNoEncontrado)
	}
	if p.Estado == model.EstadoCancelado {
		return nil, invalido("status", msgPedidoCancelado)
	}
	if err := s.repo.UpdateEstado(ctx, id, nuevo); err != nil {
		return nil, noEncontrado(err, ErrPedidoNoEncontrado)
	}
	log.Info().Uint("pedido_id", id).Str("desde", string(p.Estado)).Str("estado", string(nuevo)).Msg("estado de pedido cambiado")
	return s.ObtenerPorID(ctx, id)
}

func (s *pedidoService) Cancelar(ctx context.Context, id uint) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, ErrPedidoNoEncontrado)
	}
	if p.Estado == model.EstadoCancelado {
		return nil, &StateError{Message: msgYaCancelado}
	}
	if err := s.repo.UpdateEstado(ctx, id, model.EstadoCancelado); err != nil {
		return nil, noEncontrado(err, ErrPedidoNoEncontrado)
	}
	log.Info().Uint("pedido_id", id).Msg("pedido cancelado")
	return s.ObtenerPorID(ctx, id)
}

// resolverItems validates the requested lines and freezes each unit price.
func (s *pedidoService) resolverItems(ctx context.Context, reqs []dto.ItemPedidoRequest) ([]model.PedidoItem, error) {
	ids := make([]uint, 0, len(reqs))
	for _, it := range reqs {
		if it.Quantity <= 0 {
			return nil, invalido("items", msgCantidadPositiva)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, invalido("items", msgPrecioNegativo)
		}
		if it.UnitPrice != nil && !enCentavos(*it.UnitPrice) {
			return nil, invalido("items", msgDecimales)
		}
		ids = append(ids, it.Product)
	}

	productos, err := s.productoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.PedidoItem, 0, len(reqs))
	for _, it := range reqs {
		prod, ok := productos[it.Product]
		if !ok {
			return nil, invalido("items", fmt.Sprintf("El producto %d no existe.", it.Product))
		}
		precio := model.ResolverPrecio(it.UnitPrice, prod)
		precio.Decimal = precio.Decimal.Round(2)
		items = append(items, model.PedidoItem{
			ProductoID:     prod.ID,
			Cantidad:       it.Quantity,
			PrecioUnitario: precio,
		})
	}
	return items, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// parseFecha reads a YYYY-MM-DD calendar date as UTC midnight.
func parseFecha(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(dto.FechaLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, invalido(field, msgFechaInvalida)
	}
	return t, nil
}

// validarFechas enforces delivery ≤ event ≤ return.
func validarFechas(entrega, evento, devolucion time.Time) error {
	if entrega.After(evento) {
		return invalido("delivery_date", msgEntregaPosterior)
	}
	if devolucion.Before(evento) {
		return invalido("return_date", msgDevolucionAnterior)
	}
	return nil
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	items := make([]dto.ItemPedidoResponse, 0, len(p.Items))
	for _, it := range p.Items {
		var nombre, categoria string
		if it.Producto != nil {
			nombre = it.Producto.Nombre
			categoria = it.Producto.Categoria.Label()
		}
		var unitario *decimal.Decimal
		if it.PrecioUnitario.Valid {
			d := it.PrecioUnitario.Decimal
			unitario = &d
		}
		items = append(items, dto.ItemPedidoResponse{
			ID:              it.ID,
			Product:         it.ProductoID,
			ProductName:     nombre,
			ProductCategory: categoria,
			Quantity:        it.Cantidad,
			UnitPrice:       unitario,
			Subtotal:        it.Subtotal(),
		})
	}
	return &dto.PedidoResponse{
		ID:              p.ID,
		CustomerName:    p.ClienteNombre,
		CustomerPhone:   p.ClienteTelefono,
		CustomerAddress: p.ClienteDireccion,
		EventDate:       p.FechaEvento.Format(dto.FechaLayout),
		DeliveryDate:    p.FechaEntrega.Format(dto.FechaLayout),
		ReturnDate:      p.FechaDevolucion.Format(dto.FechaLayout),
		Status:          string(p.Estado),
		StatusDisplay:   p.Estado.Label(),
		Observations:    p.Observaciones,
		Items:           items,
		ItemsCount:      p.CantidadItems(),
		Total:           p.Total(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func pedidosToListItems(pedidos []model.Pedido) []dto.PedidoListItem {
	out := make([]dto.PedidoListItem, 0, len(pedidos))
	for i := range pedidos {
		p := &pedidos[i]
		out = append(out, dto.PedidoListItem{
			ID:            p.ID,
			CustomerName:  p.ClienteNombre,
			EventDate:     p.FechaEvento.Format(dto.FechaLayout),
			DeliveryDate:  p.FechaEntrega.Format(dto.FechaLayout),
			Status:        string(p.Estado),
			StatusDisplay: p.Estado.Label(),
			ItemsCount:    p.CantidadItems(),
			Total:         p.Total(),
			CreatedAt:     p.CreatedAt,
		})
	}
	return out
}
