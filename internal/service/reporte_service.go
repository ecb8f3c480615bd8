package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/dto"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ReporteService builds revenue reports over delivered orders. A period is
// always an inclusive range of event dates; "today" is taken in the business
// time zone.
type ReporteService interface {
	Diario(ctx context.Context, fecha string) (*dto.ReporteIngresos, error)
	Semanal(ctx context.Context, fecha string) (*dto.ReporteIngresos, error)
	Mensual(ctx context.Context, anio, mes string) (*dto.ReporteIngresos, error)
	Personalizado(ctx context.Context, desde, hasta string) (*dto.ReporteIngresos, error)
	Resumen(ctx context.Context) (*dto.ResumenResponse, error)
}

type reporteService struct {
	repo repository.PedidoRepository
	loc  *time.Location
	now  func() time.Time
}

// NewReporteService creates the reporting service. now may be nil.
func NewReporteService(repo repository.PedidoRepository, loc *time.Location, now func() time.Time) ReporteService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &reporteService{repo: repo, loc: loc, now: now}
}

const (
	msgRangoRequerido = "Se requieren start_date y end_date"
	msgRangoInvertido = "start_date debe ser anterior a end_date"
	msgMesInvalido    = "El mes debe estar entre 1 y 12."
	msgAnioInvalido   = "Año inválido."
)

func (s *reporteService) Diario(ctx context.Context, fecha string) (*dto.ReporteIngresos, error) {
	dia, err := s.fechaOHoy("date", fecha)
	if err != nil {
		return nil, err
	}
	return s.ingresos(ctx, dia, dia)
}

func (s *reporteService) Semanal(ctx context.Context, fecha string) (*dto.ReporteIngresos, error) {
	dia, err := s.fechaOHoy("date", fecha)
	if err != nil {
		return nil, err
	}
	lunes, domingo := semanaDe(dia)
	r, err := s.ingresos(ctx, lunes, domingo)
	if err != nil {
		return nil, err
	}
	_, r.WeekNumber = dia.ISOWeek()
	return r, nil
}

func (s *reporteService) Mensual(ctx context.Context, anio, mes string) (*dto.ReporteIngresos, error) {
	hoy := s.hoy()
	y, m := hoy.Year(), int(hoy.Month())
	if strings.TrimSpace(anio) != "" {
		v, err := strconv.Atoi(strings.TrimSpace(anio))
		if err != nil || v < 1 || v > 9999 {
			return nil, invalido("year", msgAnioInvalido)
		}
		y = v
	}
	if strings.TrimSpace(mes) != "" {
		v, err := strconv.Atoi(strings.TrimSpace(mes))
		if err != nil || v < 1 || v > 12 {
			return nil, invalido("month", msgMesInvalido)
		}
		m = v
	}
	inicio, fin := mesDe(y, time.Month(m))
	r, err := s.ingresos(ctx, inicio, fin)
	if err != nil {
		return nil, err
	}
	r.Year, r.Month = y, m
	return r, nil
}

func (s *reporteService) Personalizado(ctx context.Context, desde, hasta string) (*dto.ReporteIngresos, error) {
	if strings.TrimSpace(desde) == "" || strings.TrimSpace(hasta) == "" {
		return nil, invalido("start_date", msgRangoRequerido)
	}
	inicio, err := parseFecha("start_date", desde)
	if err != nil {
		return nil, err
	}
	fin, err := parseFecha("end_date", hasta)
	if err != nil {
		return nil, err
	}
	if inicio.After(fin) {
		return nil, invalido("start_date", msgRangoInvertido)
	}
	return s.ingresos(ctx, inicio, fin)
}

// Resumen runs the three period totals and the pending count concurrently.
func (s *reporteService) Resumen(ctx context.Context) (*dto.ResumenResponse, error) {
	hoy := s.hoy()
	lunes, domingo := semanaDe(hoy)
	inicioMes, finMes := mesDe(hoy.Year(), hoy.Month())

	var (
		dia, semana, mes *dto.ReporteIngresos
		pendientes       int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dia, err = s.ingresos(gctx, hoy, hoy)
		return err
	})
	g.Go(func() (err error) {
		semana, err = s.ingresos(gctx, lunes, domingo)
		return err
	})
	g.Go(func() (err error) {
		mes, err = s.ingresos(gctx, inicioMes, finMes)
		return err
	})
	g.Go(func() (err error) {
		pendientes, err = s.repo.CountByEstado(gctx, model.EstadoPendiente)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.ResumenResponse{
		Today: dto.ResumenDia{
			Date:        hoy.Format(dto.FechaLayout),
			Total:       dia.TotalRevenue,
			OrdersCount: dia.OrdersCount,
		},
		Week: dto.ResumenSemana{
			StartDate:   semana.StartDate,
			EndDate:     semana.EndDate,
			Total:       semana.TotalRevenue,
			OrdersCount: semana.OrdersCount,
		},
		Month: dto.ResumenMes{
			Year:        hoy.Year(),
			Month:       int(hoy.Month()),
			Total:       mes.TotalRevenue,
			OrdersCount: mes.OrdersCount,
		},
		PendingOrders: pendientes,
	}, nil
}

// ingresos sums the totals of delivered orders whose event falls in [desde, hasta].
func (s *reporteService) ingresos(ctx context.Context, desde, hasta time.Time) (*dto.ReporteIngresos, error) {
	pedidos, err := s.repo.FindEntregadosEnRango(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	r := &dto.ReporteIngresos{
		StartDate:   desde.Format(dto.FechaLayout),
		EndDate:     hasta.Format(dto.FechaLayout),
		OrdersCount: len(pedidos),
		Orders:      make([]dto.PedidoReporte, 0, len(pedidos)),
	}
	total := decimal.Zero
	for i := range pedidos {
		p := &pedidos[i]
		t := p.Total()
		total = total.Add(t)
		r.Orders = append(r.Orders, dto.PedidoReporte{
			ID:           p.ID,
			CustomerName: p.ClienteNombre,
			EventDate:    p.FechaEvento.Format(dto.FechaLayout),
			ItemsCount:   p.CantidadItems(),
			Total:        t,
		})
	}
	r.TotalRevenue = total
	return r, nil
}

// hoy is the current calendar date in the business zone, as UTC midnight.
func (s *reporteService) hoy() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *reporteService) fechaOHoy(field, fecha string) (time.Time, error) {
	if strings.TrimSpace(fecha) == "" {
		return s.hoy(), nil
	}
	return parseFecha(field, fecha)
}

// semanaDe returns the Monday and Sunday of the week containing d.
func semanaDe(d time.Time) (time.Time, time.Time) {
	offset := (int(d.Weekday()) + 6) % 7
	lunes := d.AddDate(0, 0, -offset)
	return lunes, lunes.AddDate(0, 0, 6)
}

func mesDe(y int, m time.Month) (time.Time, time.Time) {
	inicio := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return inicio, inicio.AddDate(0, 1, -1)
}
