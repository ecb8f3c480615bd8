package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	rendered []uint
	err      error
}

func (r *stubRenderer) RenderPedido(p *model.Pedido) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.rendered = append(r.rendered, p.ID)
	return []byte("%PDF-1.3 fake"), nil
}

type envio struct {
	to, subject, filename string
	contenido             []byte
}

type stubMailer struct {
	enviados []envio
	err      error
}

func (m *stubMailer) EnviarAdjunto(to, subject, _, filename string, contenido []byte) error {
	if m.err != nil {
		return m.err
	}
	m.enviados = append(m.enviados, envio{to: to, subject: subject, filename: filename, contenido: contenido})
	return nil
}

func TestGenerarFactura(t *testing.T) {
	repo := newStubPedidoRepo(nil)
	seedPedido(repo, "2026-03-11", model.EstadoPendiente, 1, "10")
	renderer := &stubRenderer{}
	svc := service.NewFacturaService(repo, renderer, nil, "El Grillo")

	f, err := svc.Generar(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "pedido_1.pdf", f.Filename)
	assert.Equal(t, []byte("%PDF-1.3 fake"), f.Contenido)
	assert.Equal(t, []uint{1}, renderer.rendered)
}

func TestGenerarFactura_PedidoInexistente(t *testing.T) {
	svc := service.NewFacturaService(newStubPedidoRepo(nil), &stubRenderer{}, nil, "El Grillo")
	_, err := svc.Generar(context.Background(), 9)
	assert.ErrorIs(t, err, service.ErrPedidoNoEncontrado)
}

func TestEnviarFactura(t *testing.T) {
	repo := newStubPedidoRepo(nil)
	seedPedido(repo, "2026-03-11", model.EstadoPendiente, 1, "10")
	mailer := &stubMailer{}
	svc := service.NewFacturaService(repo, &stubRenderer{}, mailer, "El Grillo")

	err := svc.Enviar(context.Background(), 1, dto.EnviarFacturaRequest{Email: "cliente@example.com"})

	require.NoError(t, err)
	require.Len(t, mailer.enviados, 1)
	assert.Equal(t, "cliente@example.com", mailer.enviados[0].to)
	assert.Equal(t, "pedido_1.pdf", mailer.enviados[0].filename)
	assert.Contains(t, mailer.enviados[0].subject, "Pedido #1")
}

func TestEnviarFactura_SinCorreoConfigurado(t *testing.T) {
	repo := newStubPedidoRepo(nil)
	seedPedido(repo, "2026-03-11", model.EstadoPendiente, 1, "10")
	svc := service.NewFacturaService(repo, &stubRenderer{}, nil, "El Grillo")

	err := svc.Enviar(context.Background(), 1, dto.EnviarFacturaRequest{Email: "cliente@example.com"})
	assert.ErrorIs(t, err, service.ErrCorreoNoConfigurado)
}

func TestEnviarFactura_FalloSMTP(t *testing.T) {
	repo := newStubPedidoRepo(nil)
	seedPedido(repo, "2026-03-11", model.EstadoPendiente, 1, "10")
	smtpErr := errors.New("535 authentication failed")
	svc := service.NewFacturaService(repo, &stubRenderer{}, &stubMailer{err: smtpErr}, "El Grillo")

	err := svc.Enviar(context.Background(), 1, dto.EnviarFacturaRequest{Email: "cliente@example.com"})
	assert.ErrorIs(t, err, smtpErr)
}
