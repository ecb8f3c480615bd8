package service_test

import (
	"context"
	"sort"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory ProductoRepository ──────────────────────────────────────────────

type stubProductoRepo struct {
	productos   map[uint]*model.Producto
	nextID      uint
	referencias map[uint]int64
	deleteErr   error
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uint]*model.Producto), referencias: make(map[uint]int64)}
}

// seed stores a product with the given price and returns it.
func (r *stubProductoRepo) seed(nombre, precio string) *model.Producto {
	r.nextID++
	p := &model.Producto{
		ID:              r.nextID,
		Nombre:          nombre,
		Categoria:       model.CategoriaMesas,
		PrecioPorUnidad: decimal.RequireFromString(precio),
		Stock:           100,
		Activo:          true,
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uint) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uint) (map[uint]*model.Producto, error) {
	out := make(map[uint]*model.Producto, len(ids))
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *stubProductoRepo) List(_ context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if filter.Category != "" && string(p.Categoria) != filter.Category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) Delete(_ context.Context, id uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.productos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.productos, id)
	return nil
}

func (r *stubProductoRepo) CountReferencias(_ context.Context, id uint) (int64, error) {
	return r.referencias[id], nil
}

// ── In-memory PedidoRepository ────────────────────────────────────────────────

type stubPedidoRepo struct {
	pedidos    map[uint]*model.Pedido
	productos  *stubProductoRepo
	nextID     uint
	nextItemID uint
	replaceErr error
}

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

func newStubPedidoRepo(productos *stubProductoRepo) *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[uint]*model.Pedido), productos: productos}
}

// clone returns a copy of p whose items point at the current catalog rows.
func (r *stubPedidoRepo) clone(p *model.Pedido) *model.Pedido {
	cp := *p
	cp.Items = make([]model.PedidoItem, len(p.Items))
	for i, it := range p.Items {
		if r.productos != nil {
			if prod, ok := r.productos.productos[it.ProductoID]; ok {
				pc := *prod
				it.Producto = &pc
			}
		}
		cp.Items[i] = it
	}
	return &cp
}

func (r *stubPedidoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	for i := range p.Items {
		r.nextItemID++
		p.Items[i].ID = r.nextItemID
		p.Items[i].PedidoID = p.ID
	}
	r.pedidos[p.ID] = r.clone(p)
	return nil
}

func (r *stubPedidoRepo) FindByID(_ context.Context, id uint) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.clone(p), nil
}

func (r *stubPedidoRepo) List(_ context.Context, filter dto.PedidoFilter, desde, hasta *time.Time) ([]model.Pedido, int64, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		if filter.Status != "" && string(p.Estado) != filter.Status {
			continue
		}
		if desde != nil && p.FechaEvento.Before(*desde) {
			continue
		}
		if hasta != nil && p.FechaEvento.After(*hasta) {
			continue
		}
		out = append(out, *r.clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubPedidoRepo) ListByEstado(ctx context.Context, estado model.EstadoPedido) ([]model.Pedido, error) {
	out, _, err := r.List(ctx, dto.PedidoFilter{Status: string(estado)}, nil, nil)
	return out, err
}

func (r *stubPedidoRepo) Update(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	cur, ok := r.pedidos[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	items := cur.Items
	cp := *p
	cp.Items = items
	cp.UpdatedAt = time.Now()
	r.pedidos[p.ID] = &cp
	return nil
}

func (r *stubPedidoRepo) ReplaceItems(_ context.Context, _ *gorm.DB, pedidoID uint, items []model.PedidoItem) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	cur, ok := r.pedidos[pedidoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	nuevos := make([]model.PedidoItem, len(items))
	for i, it := range items {
		r.nextItemID++
		it.ID = r.nextItemID
		it.PedidoID = pedidoID
		nuevos[i] = it
	}
	cur.Items = nuevos
	return nil
}

func (r *stubPedidoRepo) UpdateEstado(_ context.Context, id uint, estado model.EstadoPedido) error {
	p, ok := r.pedidos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Estado = estado
	return nil
}

func (r *stubPedidoRepo) FindEntregadosEnRango(_ context.Context, desde, hasta time.Time) ([]model.Pedido, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		if p.Estado != model.EstadoEntregado {
			continue
		}
		if p.FechaEvento.Before(desde) || p.FechaEvento.After(hasta) {
			continue
		}
		out = append(out, *r.clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaEvento.After(out[j].FechaEvento) })
	return out, nil
}

func (r *stubPedidoRepo) CountByEstado(_ context.Context, estado model.EstadoPedido) (int64, error) {
	var n int64
	for _, p := range r.pedidos {
		if p.Estado == estado {
			n++
		}
	}
	return n, nil
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

// ── In-memory UsuarioRepository / SesionRepository ───────────────────────────

type stubUsuarioRepo struct {
	users  map[string]*model.Usuario
	nextID uint
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.nextID++
	u.ID = r.nextID
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.users[u.Username] = u
	return nil
}

type stubSesionRepo struct {
	sesiones map[string]model.Sesion
	ttls     map[string]time.Duration
}

var _ repository.SesionRepository = (*stubSesionRepo)(nil)

func newStubSesionRepo() *stubSesionRepo {
	return &stubSesionRepo{sesiones: make(map[string]model.Sesion), ttls: make(map[string]time.Duration)}
}

func (r *stubSesionRepo) Save(_ context.Context, s *model.Sesion, ttl time.Duration) error {
	r.sesiones[s.ID] = *s
	r.ttls[s.ID] = ttl
	return nil
}

func (r *stubSesionRepo) Find(_ context.Context, id string) (*model.Sesion, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, repository.ErrSesionNoEncontrada
	}
	return &s, nil
}

func (r *stubSesionRepo) Delete(_ context.Context, id string) error {
	delete(r.sesiones, id)
	return nil
}
