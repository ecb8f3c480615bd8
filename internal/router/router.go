package router

import (
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/config"
	"github.com/JoaquinAb/web-alquiler/internal/handler"
	"github.com/JoaquinAb/web-alquiler/internal/infra"
	"github.com/JoaquinAb/web-alquiler/internal/middleware"
	"github.com/JoaquinAb/web-alquiler/internal/repository"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	renderer := infra.NewFacturaRenderer(infra.NegocioInfo{
		Nombre:    cfg.BusinessName,
		Direccion: cfg.BusinessAddress,
		Telefono:  cfg.BusinessPhone,
		Zona:      cfg.Location(),
	})
	// Invoice e-mail stays disabled without SMTP_HOST. The interface is only
	// assigned when a mailer exists so the service sees a true nil otherwise.
	var (
		mailer   *infra.Mailer
		enviador service.EnviadorCorreo
	)
	if cfg.SMTPHost != "" {
		mailer = infra.NewMailer(cfg)
		enviador = mailer
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	sesionRepo := repository.NewSesionRepository(rdb)
	productoRepo := repository.NewProductoRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, sesionRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	pedidoSvc := service.NewPedidoService(pedidoRepo, productoRepo)
	reporteSvc := service.NewReporteService(pedidoRepo, cfg.Location(), time.Now)
	facturaSvc := service.NewFacturaService(pedidoRepo, renderer, enviador, cfg.BusinessName)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, cfg.IsProduction())
	productosH := handler.NewProductosHandler(productoSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc, facturaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))

	api := r.Group("/api")

	// Auth (public)
	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(rdb, 20, time.Minute), authH.Login)
		auth.GET("/csrf", authH.CSRF)
	}

	// Protected routes: session cookie + CSRF header on unsafe methods
	private := api.Group("", middleware.SessionAuth(authSvc), middleware.CSRF())
	{
		private.POST("/auth/logout", authH.Logout)
		private.GET("/auth/me", authH.Me)

		prods := private.Group("/products")
		{
			prods.GET("", productosH.Listar)
			prods.POST("", productosH.Crear)
			prods.GET("/categories", productosH.Categorias)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.PUT("/:id", productosH.Reemplazar)
			prods.PATCH("/:id", productosH.ActualizarParcial)
			prods.DELETE("/:id", productosH.Eliminar)
		}

		orders := private.Group("/orders")
		{
			orders.GET("", pedidosH.Listar)
			orders.POST("", pedidosH.Crear)
			orders.GET("/pending", pedidosH.Pendientes)
			orders.GET("/delivered", pedidosH.Entregados)
			orders.GET("/:id", pedidosH.ObtenerPorID)
			orders.PUT("/:id", pedidosH.Reemplazar)
			orders.PATCH("/:id", pedidosH.ActualizarParcial)
			orders.DELETE("/:id", pedidosH.Cancelar)
			orders.PATCH("/:id/change_status", pedidosH.CambiarEstado)
			orders.GET("/:id/pdf", pedidosH.PDF)
			orders.POST("/:id/send_invoice", pedidosH.EnviarFactura)
		}

		reports := private.Group("/reports")
		{
			reports.GET("/daily", reportesH.Diario)
			reports.GET("/weekly", reportesH.Semanal)
			reports.GET("/monthly", reportesH.Mensual)
			reports.GET("/custom", reportesH.Personalizado)
			reports.GET("/summary", reportesH.Resumen)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
