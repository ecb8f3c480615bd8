package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ── Domain errors ─────────────────────────────────────────────────────────────
// Handlers map these to HTTP status codes; anything else is an internal error.

var (
	ErrPedidoNoEncontrado   = errors.New("Pedido no encontrado")
	ErrProductoNoEncontrado = errors.New("Producto no encontrado")

	ErrCredencialesInvalidas = errors.New("Credenciales inválidas.")
	ErrCuentaDesactivada     = errors.New("Cuenta desactivada.")
	ErrNoAutenticado         = errors.New("Autenticacion requerida")

	ErrCorreoNoConfigurado = errors.New("El envio de correo no esta configurado")
)

// ValidationError is a business-rule violation tied to one input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func invalido(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// StateError rejects an operation the order's current status does not allow.
type StateError struct{ Message string }

func (e *StateError) Error() string { return e.Message }

// ReferentialError rejects deleting a row other rows still point at.
type ReferentialError struct{ Message string }

func (e *ReferentialError) Error() string { return e.Message }

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// noEncontrado translates gorm's not-found into the given domain error.
func noEncontrado(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
