package repository

import (
	"context"
	"strings"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"

	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uint) (*model.Producto, error)
	// FindByIDs returns the products found, keyed by id. Missing ids are simply absent.
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	Delete(ctx context.Context, id uint) error
	// CountReferencias counts order items pointing at the product.
	CountReferencias(ctx context.Context, id uint) (int64, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

// productoOrdering maps public ordering keys to columns.
var productoOrdering = map[string]string{
	"name":           "nombre",
	"price_per_unit": "precio_por_unidad",
	"stock":          "stock",
	"category":       "categoria",
}

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByIDs(ctx context.Context, ids []uint) (map[uint]*model.Producto, error) {
	out := make(map[uint]*model.Producto, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var productos []model.Producto
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productos).Error; err != nil {
		return nil, err
	}
	for i := range productos {
		out[productos[i].ID] = &productos[i]
	}
	return out, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	if filter.Category != "" {
		q = q.Where("categoria = ?", filter.Category)
	}
	// is_active: "true"/"false" filter, absent = todos
	if filter.IsActive != "" {
		q = q.Where("activo = ?", strings.EqualFold(filter.IsActive, "true"))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("nombre ILIKE ? OR descripcion ILIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := q.Order(ordenar(filter.Ordering, productoOrdering, "categoria ASC, nombre ASC")).
		Limit(filter.PageSize).Offset(offset).
		Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Producto{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) CountReferencias(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PedidoItem{}).Where("producto_id = ?", id).Count(&n).Error
	return n, err
}

// ordenar turns a public "ordering" value ("-event_date") into an ORDER BY
// clause using only whitelisted columns. Unknown keys fall back to def.
func ordenar(ordering string, columnas map[string]string, def string) string {
	if ordering == "" {
		return def
	}
	dir := "ASC"
	key := ordering
	if strings.HasPrefix(key, "-") {
		dir = "DESC"
		key = key[1:]
	}
	col, ok := columnas[key]
	if !ok {
		return def
	}
	return col + " " + dir + ", id " + dir
}
