package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/handler"
	"github.com/JoaquinAb/web-alquiler/internal/infra"
	"github.com/JoaquinAb/web-alquiler/internal/middleware"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Stub services ─────────────────────────────────────────────────────────────

type stubPedidoService struct {
	err      error
	creado   dto.CrearPedidoRequest
	parcial  *bool
	cancelar func(id uint) (*dto.PedidoResponse, error)
}

var _ service.PedidoService = (*stubPedidoService)(nil)

func respuesta(id uint) *dto.PedidoResponse {
	return &dto.PedidoResponse{ID: id, CustomerName: "María", Status: "pendiente", Total: decimal.NewFromInt(1500)}
}

func (s *stubPedidoService) Crear(_ context.Context, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	s.creado = req
	if s.err != nil {
		return nil, s.err
	}
	return respuesta(1), nil
}

func (s *stubPedidoService) ObtenerPorID(_ context.Context, id uint) (*dto.PedidoResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return respuesta(id), nil
}

func (s *stubPedidoService) Listar(_ context.Context, f dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	return &dto.PedidoListResponse{Page: f.Page, PageSize: f.PageSize, Results: []dto.PedidoListItem{}}, s.err
}

func (s *stubPedidoService) ListarPorEstado(_ context.Context, estado model.EstadoPedido) ([]dto.PedidoListItem, error) {
	return []dto.PedidoListItem{{ID: 3, Status: string(estado)}}, s.err
}

func (s *stubPedidoService) Actualizar(_ context.Context, id uint, _ dto.ActualizarPedidoRequest, parcial bool) (*dto.PedidoResponse, error) {
	s.parcial = &parcial
	if s.err != nil {
		return nil, s.err
	}
	return respuesta(id), nil
}

func (s *stubPedidoService) CambiarEstado(_ context.Context, id uint, req dto.CambiarEstadoRequest) (*dto.PedidoResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := respuesta(id)
	r.Status = req.Status
	return r, nil
}

func (s *stubPedidoService) Cancelar(_ context.Context, id uint) (*dto.PedidoResponse, error) {
	return s.cancelar(id)
}

type stubFacturaService struct{ enviarErr error }

func (s *stubFacturaService) Generar(_ context.Context, id uint) (*dto.FacturaPDF, error) {
	if id == 404 {
		return nil, service.ErrPedidoNoEncontrado
	}
	return &dto.FacturaPDF{Filename: "pedido_7.pdf", Contenido: []byte("%PDF-1.3")}, nil
}

func (s *stubFacturaService) Enviar(_ context.Context, _ uint, _ dto.EnviarFacturaRequest) error {
	return s.enviarErr
}

type stubProductoService struct{ eliminarErr error }

func (s *stubProductoService) Crear(_ context.Context, _ dto.ProductoRequest) (*dto.ProductoResponse, error) {
	return nil, &service.ValidationError{Field: "price_per_unit", Message: "El precio debe ser mayor a 0."}
}
func (s *stubProductoService) ObtenerPorID(_ context.Context, _ uint) (*dto.ProductoResponse, error) {
	return nil, service.ErrProductoNoEncontrado
}
func (s *stubProductoService) Listar(_ context.Context, _ dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	return &dto.ProductoListResponse{}, nil
}
func (s *stubProductoService) Actualizar(_ context.Context, _ uint, _ dto.ProductoRequest, _ bool) (*dto.ProductoResponse, error) {
	return &dto.ProductoResponse{}, nil
}
func (s *stubProductoService) Eliminar(_ context.Context, _ uint) error { return s.eliminarErr }
func (s *stubProductoService) Categorias() []dto.CategoriaResponse {
	return []dto.CategoriaResponse{{Value: "mesas", Label: "Mesas"}}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func pedidosEngine(svc *stubPedidoService, facturas *stubFacturaService) *gin.Engine {
	h := handler.NewPedidosHandler(svc, facturas)
	r := newEngine()
	r.POST("/orders", h.Crear)
	r.GET("/orders", h.Listar)
	r.GET("/orders/pending", h.Pendientes)
	r.GET("/orders/:id", h.ObtenerPorID)
	r.PUT("/orders/:id", h.Reemplazar)
	r.PATCH("/orders/:id", h.ActualizarParcial)
	r.DELETE("/orders/:id", h.Cancelar)
	r.PATCH("/orders/:id/change_status", h.CambiarEstado)
	r.GET("/orders/:id/pdf", h.PDF)
	r.POST("/orders/:id/send_invoice", h.EnviarFactura)
	return r
}

// ── Pedidos ───────────────────────────────────────────────────────────────────

func TestPedidos_Crear201(t *testing.T) {
	svc := &stubPedidoService{}
	r := pedidosEngine(svc, &stubFacturaService{})

	w := doJSON(r, http.MethodPost, "/orders", map[string]interface{}{
		"customer_name": "María",
		"event_date":    "2026-11-14",
		"delivery_date": "2026-11-13",
		"return_date":   "2026-11-16",
		"items":         []map[string]interface{}{{"product": 1, "quantity": 3, "unit_price": "99.90"}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1500", decode(t, w)["total"])
	require.Len(t, svc.creado.Items, 1)
	assert.Equal(t, "99.9", svc.creado.Items[0].UnitPrice.String())
}

func TestPedidos_CrearSinCamposRequeridos422(t *testing.T) {
	r := pedidosEngine(&stubPedidoService{}, &stubFacturaService{})

	w := doJSON(r, http.MethodPost, "/orders", map[string]interface{}{"customer_name": "María"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "event_date")
}

func TestPedidos_JSONInvalido400(t *testing.T) {
	r := pedidosEngine(&stubPedidoService{}, &stubFacturaService{})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPedidos_ErrorDeValidacionDelServicio400(t *testing.T) {
	svc := &stubPedidoService{err: &service.ValidationError{Field: "delivery_date", Message: "La fecha de entrega no puede ser posterior al evento."}}
	r := pedidosEngine(svc, &stubFacturaService{})

	w := doJSON(r, http.MethodPost, "/orders", map[string]interface{}{
		"customer_name": "María", "event_date": "2026-11-14", "delivery_date": "2026-11-15", "return_date": "2026-11-16",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "La fecha de entrega no puede ser posterior al evento.", body["detail"])
	assert.Contains(t, body["fields"], "delivery_date")
}

func TestPedidos_NoEncontrado404(t *testing.T) {
	r := pedidosEngine(&stubPedidoService{err: service.ErrPedidoNoEncontrado}, &stubFacturaService{})
	w := doJSON(r, http.MethodGet, "/orders/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPedidos_IDInvalido400(t *testing.T) {
	r := pedidosEngine(&stubPedidoService{}, &stubFacturaService{})
	w := doJSON(r, http.MethodGet, "/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPedidos_ErrorInternoNoSeExpone(t *testing.T) {
	r := pedidosEngine(&stubPedidoService{err: errors.New("pq: deadlock detected")}, &stubFacturaService{})
	w := doJSON(r, http.MethodGet, "/orders/1", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "deadlock")
}

func TestPedidos_PutYPatch(t *testing.T) {
	svc := &stubPedidoService{}
	r := pedidosEngine(svc, &stubFacturaService{})

	w := doJSON(r, http.MethodPut, "/orders/1", map[string]interface{}{"customer_name": "Otro"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.parcial)
	assert.False(t, *svc.parcial)

	w = doJSON(r, http.MethodPatch, "/orders/1", map[string]interface{}{"observations": "x"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *svc.parcial)
}

func TestPedidos_CancelarDosVeces(t *testing.T) {
	cancelados := map[uint]bool{}
	svc := &stubPedidoService{cancelar: func(id uint) (*dto.PedidoResponse, error) {
		if cancelados[id] {
			return nil, &service.StateError{Message: "El pedido ya está cancelado."}
		}
		cancelados[id] = true
		r := respuesta(id)
		r.Status = "cancelado"
		return r, nil
	}}
	r := pedidosEngine(svc, &stubFacturaService{})

	w := doJSON(r, http.MethodDelete, "/orders/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelado", decode(t, w)["status"])

	w = doJSON(r, http.MethodDelete, "/orders/5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El pedido ya está cancelado.", decode(t, w)["detail"])
}

func TestPedidos_CambiarEstado(t *testing.T) {
	r := pedidosEngine(&stubPedidoService{}, &stubFacturaService{})
	w := doJSON(r, http.MethodPatch, "/orders/1/change_status", map[string]string{"status": "entregado"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "entregado", decode(t, w)["status"])

	w = doJSON(r, http.MethodPatch, "/orders/1/change_status", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPedidos_Pendientes(t *testing.T) {
	r := pedidosEngine(&stubPedidoService{}, &stubFacturaService{})
	w := doJSON(r, http.MethodGet, "/orders/pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pendiente"`)
}

func TestPedidos_PDF(t *testing.T) {
	r := pedidosEngine(&stubPedidoService{}, &stubFacturaService{})

	w := doJSON(r, http.MethodGet, "/orders/7/pdf", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="pedido_7.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())

	w = doJSON(r, http.MethodGet, "/orders/404/pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPedidos_EnviarFactura(t *testing.T) {
	cases := []struct {
		name string
		err  error
		body map[string]string
		want int
	}{
		{"ok", nil, map[string]string{"email": "cliente@example.com"}, http.StatusOK},
		{"email invalido", nil, map[string]string{"email": "no-es-email"}, http.StatusUnprocessableEntity},
		{"sin smtp", service.ErrCorreoNoConfigurado, map[string]string{"email": "cliente@example.com"}, http.StatusServiceUnavailable},
		{"breaker abierto", infra.ErrCircuitOpen, map[string]string{"email": "cliente@example.com"}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := pedidosEngine(&stubPedidoService{}, &stubFacturaService{enviarErr: tc.err})
			w := doJSON(r, http.MethodPost, "/orders/1/send_invoice", tc.body)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

// ── Productos ─────────────────────────────────────────────────────────────────

func productosEngine(svc *stubProductoService) *gin.Engine {
	h := handler.NewProductosHandler(svc)
	r := newEngine()
	r.POST("/products", h.Crear)
	r.GET("/products/categories", h.Categorias)
	r.GET("/products/:id", h.ObtenerPorID)
	r.DELETE("/products/:id", h.Eliminar)
	return r
}

func TestProductos_EliminarReferenciado409(t *testing.T) {
	r := productosEngine(&stubProductoService{eliminarErr: &service.ReferentialError{Message: "en uso"}})
	w := doJSON(r, http.MethodDelete, "/products/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductos_Eliminar204(t *testing.T) {
	r := productosEngine(&stubProductoService{})
	w := doJSON(r, http.MethodDelete, "/products/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProductos_CrearPrecioInvalido400(t *testing.T) {
	r := productosEngine(&stubProductoService{})
	w := doJSON(r, http.MethodPost, "/products", map[string]interface{}{"name": "Silla", "price_per_unit": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "price_per_unit")
}

func TestProductos_NoEncontrado404(t *testing.T) {
	r := productosEngine(&stubProductoService{})
	w := doJSON(r, http.MethodGet, "/products/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductos_Categorias(t *testing.T) {
	r := productosEngine(&stubProductoService{})
	w := doJSON(r, http.MethodGet, "/products/categories", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"value":"mesas","label":"Mesas"}]`, w.Body.String())
}

// ── Reportes ──────────────────────────────────────────────────────────────────

type stubReporteService struct{}

func (stubReporteService) Diario(_ context.Context, fecha string) (*dto.ReporteIngresos, error) {
	return &dto.ReporteIngresos{StartDate: fecha, EndDate: fecha, Orders: []dto.PedidoReporte{}}, nil
}
func (stubReporteService) Semanal(_ context.Context, _ string) (*dto.ReporteIngresos, error) {
	return &dto.ReporteIngresos{WeekNumber: 11}, nil
}
func (stubReporteService) Mensual(_ context.Context, _, _ string) (*dto.ReporteIngresos, error) {
	return &dto.ReporteIngresos{Year: 2026, Month: 3}, nil
}
func (stubReporteService) Personalizado(_ context.Context, desde, hasta string) (*dto.ReporteIngresos, error) {
	if desde == "" || hasta == "" {
		return nil, &service.ValidationError{Field: "start_date", Message: "Se requieren start_date y end_date"}
	}
	return &dto.ReporteIngresos{StartDate: desde, EndDate: hasta}, nil
}
func (stubReporteService) Resumen(_ context.Context) (*dto.ResumenResponse, error) {
	return &dto.ResumenResponse{PendingOrders: 4}, nil
}

func TestReportes(t *testing.T) {
	h := handler.NewReportesHandler(stubReporteService{})
	r := newEngine()
	r.GET("/reports/daily", h.Diario)
	r.GET("/reports/custom", h.Personalizado)
	r.GET("/reports/summary", h.Resumen)

	w := doJSON(r, http.MethodGet, "/reports/daily?date=2026-03-11", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-03-11", decode(t, w)["start_date"])
	assert.NotContains(t, w.Body.String(), "week_number")

	w = doJSON(r, http.MethodGet, "/reports/custom?start_date=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Se requieren start_date y end_date", decode(t, w)["detail"])

	w = doJSON(r, http.MethodGet, "/reports/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode(t, w)["pending_orders"])
}

// ── Auth ──────────────────────────────────────────────────────────────────────

type stubAuthService struct {
	loginErr  error
	loggedOut string
}

func (s *stubAuthService) Login(_ context.Context, _ dto.LoginRequest) (*dto.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.LoginResult{
		Response:     dto.LoginResponse{User: dto.UsuarioResponse{ID: 1, Username: "admin"}, CSRFToken: "csrf-abc", Message: "Login exitoso"},
		SessionToken: "signed.jwt.token",
		ExpiresIn:    12 * time.Hour,
	}, nil
}

func (s *stubAuthService) Logout(_ context.Context, sesionID string) error {
	s.loggedOut = sesionID
	return nil
}

func (s *stubAuthService) Autenticar(_ context.Context, token string) (*model.Usuario, *model.Sesion, error) {
	if token != "signed.jwt.token" {
		return nil, nil, service.ErrNoAutenticado
	}
	return &model.Usuario{ID: 1, Username: "admin", Activo: true}, &model.Sesion{ID: "sid-1", UsuarioID: 1, CSRFToken: "csrf-abc"}, nil
}

func (s *stubAuthService) Me(u *model.Usuario, sesion *model.Sesion) *dto.MeResponse {
	return &dto.MeResponse{User: service.UsuarioToResponse(u), CSRFToken: sesion.CSRFToken}
}

func authEngine(svc *stubAuthService) *gin.Engine {
	h := handler.NewAuthHandler(svc, false)
	r := newEngine()
	r.POST("/auth/login", h.Login)
	r.GET("/auth/csrf", h.CSRF)
	p := r.Group("/auth", middleware.SessionAuth(svc), middleware.CSRF())
	p.GET("/me", h.Me)
	p.POST("/logout", h.Logout)
	return r
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuth_LoginEntregaCookies(t *testing.T) {
	r := authEngine(&stubAuthService{})

	w := doJSON(r, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "x"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login exitoso", decode(t, w)["message"])
	sesion := cookie(w, middleware.SessionCookie)
	require.NotNil(t, sesion)
	assert.Equal(t, "signed.jwt.token", sesion.Value)
	assert.True(t, sesion.HttpOnly)
	csrf := cookie(w, middleware.CSRFCookie)
	require.NotNil(t, csrf)
	assert.False(t, csrf.HttpOnly)
}

func TestAuth_LoginErrores(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrCredencialesInvalidas, http.StatusUnauthorized},
		{service.ErrCuentaDesactivada, http.StatusUnauthorized},
		{&service.ValidationError{Field: "username", Message: "Se requiere usuario y contraseña."}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		r := authEngine(&stubAuthService{loginErr: tc.err})
		w := doJSON(r, http.MethodPost, "/auth/login", map[string]string{})
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
	}
}

func TestAuth_MeYLogout(t *testing.T) {
	svc := &stubAuthService{}
	r := authEngine(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "signed.jwt.token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csrf-abc", decode(t, w)["csrf_token"])

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "signed.jwt.token"})
	req.Header.Set(middleware.CSRFHeader, "csrf-abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout exitoso", decode(t, w)["message"])
	assert.Equal(t, "sid-1", svc.loggedOut)
	assert.Equal(t, -1, cookie(w, middleware.SessionCookie).MaxAge)
}

func TestAuth_CSRFAnonimoEmiteToken(t *testing.T) {
	r := authEngine(&stubAuthService{})

	w := doJSON(r, http.MethodGet, "/auth/csrf", nil)

	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["csrf_token"].(string)
	assert.Len(t, token, 32)
	assert.Equal(t, token, cookie(w, middleware.CSRFCookie).Value)
}

func TestAuth_CSRFConSesionDevuelveElDeLaSesion(t *testing.T) {
	r := authEngine(&stubAuthService{})
	req := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "signed.jwt.token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "csrf-abc", decode(t, w)["csrf_token"])
}
