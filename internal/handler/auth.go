package handler

import (
	"errors"
	"net/http"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/middleware"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct {
	svc service.AuthService
	// secure marks cookies Secure; on in production behind HTTPS.
	secure bool
}

func NewAuthHandler(svc service.AuthService, secure bool) *AuthHandler {
	return &AuthHandler{svc: svc, secure: secure}
}

// Login godoc
// @Summary Inicia sesion y entrega las cookies de sesion y CSRF
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} apierror.ValidationError
// @Failure 401 {object} apierror.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	maxAge := int(res.ExpiresIn.Seconds())
	h.setCookie(c, middleware.SessionCookie, res.SessionToken, maxAge, true)
	h.setCookie(c, middleware.CSRFCookie, res.Response.CSRFToken, maxAge, false)
	c.JSON(http.StatusOK, res.Response)
}

// Logout godoc
// @Summary Cierra la sesion actual
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.GetSesion(c).ID); err != nil {
		responderError(c, err)
		return
	}
	h.setCookie(c, middleware.SessionCookie, "", -1, true)
	h.setCookie(c, middleware.CSRFCookie, "", -1, false)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logout exitoso"})
}

// Me godoc
// @Summary Usuario autenticado y su token CSRF
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} apierror.APIError
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Me(middleware.GetUsuario(c), middleware.GetSesion(c)))
}

// CSRF returns the session's CSRF token, or issues a fresh cookie token for
// anonymous clients.
func (h *AuthHandler) CSRF(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		_, sesion, err := h.svc.Autenticar(c.Request.Context(), token)
		if err == nil {
			c.JSON(http.StatusOK, dto.CSRFResponse{CSRFToken: sesion.CSRFToken})
			return
		}
		if !errors.Is(err, service.ErrNoAutenticado) {
			log.Warn().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("csrf: sesion no verificable")
		}
	}
	token := service.NuevoToken()
	h.setCookie(c, middleware.CSRFCookie, token, 0, false)
	c.JSON(http.StatusOK, dto.CSRFResponse{CSRFToken: token})
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secure, httpOnly)
}
