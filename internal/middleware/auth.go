package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/JoaquinAb/web-alquiler/internal/apierror"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookie = "sessionid"
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"

	UsuarioKey = "usuario"
	SesionKey  = "sesion"
)

// Autenticador resolves a session cookie value. service.AuthService satisfies it.
type Autenticador interface {
	Autenticar(ctx context.Context, token string) (*model.Usuario, *model.Sesion, error)
}

// SessionAuth requires a valid session cookie on every protected route.
func SessionAuth(auth Autenticador) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticación requerida"))
			return
		}

		usuario, sesion, err := auth.Autenticar(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrNoAutenticado) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sesión inválida o expirada"))
				return
			}
			log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("error validando sesion")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.New("Servicio de sesiones no disponible"))
			return
		}

		c.Set(UsuarioKey, usuario)
		c.Set(SesionKey, sesion)
		c.Next()
	}
}

// CSRF rejects unsafe requests whose X-CSRFToken header does not match the
// session's token. Must run after SessionAuth.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		sesion := GetSesion(c)
		header := c.GetHeader(CSRFHeader)
		if sesion == nil || header == "" ||
			subtle.ConstantTimeCompare([]byte(header), []byte(sesion.CSRFToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("CSRF token inválido o ausente."))
			return
		}
		c.Next()
	}
}

// GetUsuario returns the authenticated user, or nil outside SessionAuth.
func GetUsuario(c *gin.Context) *model.Usuario {
	u, _ := c.Get(UsuarioKey)
	usuario, _ := u.(*model.Usuario)
	return usuario
}

// GetSesion returns the current session, or nil outside SessionAuth.
func GetSesion(c *gin.Context) *model.Sesion {
	s, _ := c.Get(SesionKey)
	sesion, _ := s.(*model.Sesion)
	return sesion
}
