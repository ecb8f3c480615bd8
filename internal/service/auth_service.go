package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/config"
	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService manages cookie sessions for back-office operators. The cookie
// holds a signed token naming a server-side session; the session carries the
// CSRF token that unsafe requests must echo.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error)
	Logout(ctx context.Context, sesionID string) error
	// Autenticar resolves a session cookie to its user and session.
	// Any invalid, expired or revoked token yields ErrNoAutenticado.
	Autenticar(ctx context.Context, token string) (*model.Usuario, *model.Sesion, error)
	Me(u *model.Usuario, s *model.Sesion) *dto.MeResponse
}

// SesionClaims are the claims signed into the session cookie. The
// registered ID claim is the session key in Redis.
type SesionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type authService struct {
	usuarios repository.UsuarioRepository
	sesiones repository.SesionRepository
	secret   []byte
	ttl      time.Duration
}

func NewAuthService(usuarios repository.UsuarioRepository, sesiones repository.SesionRepository, cfg *config.Config) AuthService {
	return &authService{
		usuarios: usuarios,
		sesiones: sesiones,
		secret:   []byte(cfg.SessionSecret),
		ttl:      cfg.SessionTTL(),
	}
}

const (
	bcryptCost         = 12
	msgLoginIncompleto = "Se requiere usuario y contraseña."
	msgLoginExitoso    = "Login exitoso"
)

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, invalido("username", msgLoginIncompleto)
	}

	user, err := s.usuarios.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredencialesInvalidas
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}
	if !user.Activo {
		return nil, ErrCuentaDesactivada
	}

	sesion := &model.Sesion{
		ID:        uuid.NewString(),
		UsuarioID: user.ID,
		CSRFToken: NuevoToken(),
	}
	if err := s.sesiones.Save(ctx, sesion, s.ttl); err != nil {
		return nil, err
	}
	token, err := s.firmar(user, sesion.ID)
	if err != nil {
		return nil, err
	}

	log.Info().Uint("usuario_id", user.ID).Str("username", user.Username).Msg("login")
	return &dto.LoginResult{
		Response: dto.LoginResponse{
			User:      UsuarioToResponse(user),
			CSRFToken: sesion.CSRFToken,
			Message:   msgLoginExitoso,
		},
		SessionToken: token,
		ExpiresIn:    s.ttl,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sesionID string) error {
	if err := s.sesiones.Delete(ctx, sesionID); err != nil {
		return err
	}
	log.Info().Str("sesion", sesionID).Msg("logout")
	return nil
}

func (s *authService) Autenticar(ctx context.Context, token string) (*model.Usuario, *model.Sesion, error) {
	claims := &SesionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, nil, ErrNoAutenticado
	}

	sesion, err := s.sesiones.Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSesionNoEncontrada) {
			return nil, nil, ErrNoAutenticado
		}
		return nil, nil, err
	}
	if sesion.UsuarioID != claims.UserID {
		return nil, nil, ErrNoAutenticado
	}

	user, err := s.usuarios.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoAutenticado
		}
		return nil, nil, err
	}
	if !user.Activo {
		return nil, nil, ErrNoAutenticado
	}
	return user, sesion, nil
}

func (s *authService) Me(u *model.Usuario, sesion *model.Sesion) *dto.MeResponse {
	return &dto.MeResponse{User: UsuarioToResponse(u), CSRFToken: sesion.CSRFToken}
}

func (s *authService) firmar(u *model.Usuario, sesionID string) (string, error) {
	now := time.Now()
	claims := SesionClaims{
		UserID:   u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sesionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// NuevoToken returns a random 32-char hex token for CSRF protection.
func NuevoToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HashPassword hashes a password with the cost used for every account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func UsuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.Nombre,
		LastName:  u.Apellido,
		IsStaff:   u.EsStaff,
	}
}
