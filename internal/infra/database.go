package infra

import (
	"fmt"

	"github.com/JoaquinAb/web-alquiler/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. Schema creation is
// left to migrations/ (cmd/migrate) or to RunMigrations when AUTO_MIGRATE is on.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates / updates all tables with AutoMigrate and then applies
// the idempotent patches GORM cannot express. Used at startup (AUTO_MIGRATE),
// by integration tests and by the SQLite-backed repository tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.Pedido{},
		&model.PedidoItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches adds the CHECK constraints that mirror migrations/000001.
// Each statement is guarded by an existence check so re-running is a no-op.
// Only PostgreSQL understands DO blocks; other dialects skip the patches.
func applySchemaPatches(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	patches := []struct{ descr, sql string }{
		{"productos precio positivo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_precio_positivo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_precio_positivo CHECK (precio_por_unidad > 0);
  END IF;
END $$`},
		{"productos stock no negativo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock >= 0);
  END IF;
END $$`},
		{"productos categoria valida", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_categoria') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_categoria CHECK (categoria IN
      ('vajilla','sillas','mesas','manteles','cubiertos','cristaleria','decoracion','otros'));
  END IF;
END $$`},
		{"pedidos estado valido", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pedidos_estado') THEN
    ALTER TABLE pedidos ADD CONSTRAINT chk_pedidos_estado CHECK (estado IN ('pendiente','entregado','cancelado'));
  END IF;
END $$`},
		{"pedido_items cantidad positiva", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pedido_items_cantidad_positiva') THEN
    ALTER TABLE pedido_items ADD CONSTRAINT chk_pedido_items_cantidad_positiva CHECK (cantidad > 0);
  END IF;
END $$`},
		{"productos activo default", `ALTER TABLE productos ALTER COLUMN activo SET DEFAULT true`},
		{"usuarios activo default", `ALTER TABLE usuarios ALTER COLUMN activo SET DEFAULT true`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
