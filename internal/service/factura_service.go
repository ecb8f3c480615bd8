package service

import (
	"context"
	"fmt"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/repository"

	"github.com/rs/zerolog/log"
)

// RenderizadorPDF turns an order into a printable invoice.
type RenderizadorPDF interface {
	RenderPedido(p *model.Pedido) ([]byte, error)
}

// EnviadorCorreo sends a message with a single attachment.
type EnviadorCorreo interface {
	EnviarAdjunto(to, subject, body, filename string, contenido []byte) error
}

type FacturaService interface {
	Generar(ctx context.Context, pedidoID uint) (*dto.FacturaPDF, error)
	// Enviar mails the invoice. Returns ErrCorreoNoConfigurado without a mailer.
	Enviar(ctx context.Context, pedidoID uint, req dto.EnviarFacturaRequest) error
}

type facturaService struct {
	repo     repository.PedidoRepository
	renderer RenderizadorPDF
	mailer   EnviadorCorreo
	negocio  string
}

// NewFacturaService creates the invoice service; mailer may be nil.
func NewFacturaService(repo repository.PedidoRepository, renderer RenderizadorPDF, mailer EnviadorCorreo, negocio string) FacturaService {
	return &facturaService{repo: repo, renderer: renderer, mailer: mailer, negocio: negocio}
}

func (s *facturaService) Generar(ctx context.Context, pedidoID uint) (*dto.FacturaPDF, error) {
	p, err := s.repo.FindByID(ctx, pedidoID)
	if err != nil {
		return nil, noEncontrado(err, ErrPedidoNoEncontrado)
	}
	contenido, err := s.renderer.RenderPedido(p)
	if err != nil {
		return nil, fmt.Errorf("render pedido %d: %w", pedidoID, err)
	}
	return &dto.FacturaPDF{
		Filename:  fmt.Sprintf("pedido_%d.pdf", p.ID),
		Contenido: contenido,
	}, nil
}

func (s *facturaService) Enviar(ctx context.Context, pedidoID uint, req dto.EnviarFacturaRequest) error {
	if s.mailer == nil {
		return ErrCorreoNoConfigurado
	}
	factura, err := s.Generar(ctx, pedidoID)
	if err != nil {
		return err
	}

	asunto := fmt.Sprintf("Pedido #%d - %s", pedidoID, s.negocio)
	cuerpo := fmt.Sprintf("Adjuntamos el detalle de su pedido #%d.\n\nGracias por elegirnos.\n%s\n", pedidoID, s.negocio)
	if err := s.mailer.EnviarAdjunto(req.Email, asunto, cuerpo, factura.Filename, factura.Contenido); err != nil {
		log.Error().Err(err).Uint("pedido_id", pedidoID).Str("to", req.Email).Msg("envio de factura fallido")
		return fmt.Errorf("enviar factura %d: %w", pedidoID, err)
	}
	log.Info().Uint("pedido_id", pedidoID).Str("to", req.Email).Msg("factura enviada")
	return nil
}
