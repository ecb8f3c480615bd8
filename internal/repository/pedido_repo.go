package repository

import (
	"context"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PedidoRepository interface {
	// Create inserts the order and its Items in tx.
	Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uint) (*model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter, desde, hasta *time.Time) ([]model.Pedido, int64, error)
	ListByEstado(ctx context.Context, estado model.EstadoPedido) ([]model.Pedido, error)
	// Update persists the order's own columns; Items are never touched.
	Update(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	// ReplaceItems deletes every current item of the order and inserts items.
	ReplaceItems(ctx context.Context, tx *gorm.DB, pedidoID uint, items []model.PedidoItem) error
	UpdateEstado(ctx context.Context, id uint, estado model.EstadoPedido) error

	// Reporting
	FindEntregadosEnRango(ctx context.Context, desde, hasta time.Time) ([]model.Pedido, error)
	CountByEstado(ctx context.Context, estado model.EstadoPedido) (int64, error)

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

var pedidoOrdering = map[string]string{
	"created_at":    "created_at",
	"event_date":    "fecha_evento",
	"delivery_date": "fecha_entrega",
	"status":        "estado",
}

// conn returns tx when a transaction is in progress, the base handle otherwise.
func (r *pedidoRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *pedidoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return r.conn(tx).WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uint) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Producto").
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter, desde, hasta *time.Time) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})

	if filter.Status != "" {
		q = q.Where("estado = ?", filter.Status)
	}
	if desde != nil {
		q = q.Where("fecha_evento >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("fecha_evento <= ?", *hasta)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("cliente_nombre ILIKE ? OR cliente_telefono ILIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := q.Preload("Items").
		Order(ordenar(filter.Ordering, pedidoOrdering, "created_at DESC, id DESC")).
		Offset(offset).Limit(filter.PageSize).
		Find(&pedidos).Error

	return pedidos, total, err
}

func (r *pedidoRepo) ListByEstado(ctx context.Context, estado model.EstadoPedido) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).Preload("Items").
		Where("estado = ?", estado).
		Order("created_at DESC, id DESC").
		Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) Update(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *pedidoRepo) ReplaceItems(ctx context.Context, tx *gorm.DB, pedidoID uint, items []model.PedidoItem) error {
	db := r.conn(tx).WithContext(ctx)
	if err := db.Where("pedido_id = ?", pedidoID).Delete(&model.PedidoItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].PedidoID = pedidoID
	}
	return db.Omit("Producto").Create(&items).Error
}

func (r *pedidoRepo) UpdateEstado(ctx context.Context, id uint, estado model.EstadoPedido) error {
	res := r.db.WithContext(ctx).Model(&model.Pedido{}).Where("id = ?", id).Update("estado", estado)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pedidoRepo) FindEntregadosEnRango(ctx context.Context, desde, hasta time.Time) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).Preload("Items").
		Where("estado = ? AND fecha_evento >= ? AND fecha_evento <= ?", model.EstadoEntregado, desde, hasta).
		Order("fecha_evento DESC, id DESC").
		Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) CountByEstado(ctx context.Context, estado model.EstadoPedido) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Pedido{}).Where("estado = ?", estado).Count(&n).Error
	return n, err
}
