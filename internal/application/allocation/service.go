// Package allocation es la capa de entrada de asignaciones: valida la solicitud, invoca al
// ledger con reintentos acotados ante conflictos y da forma al resultado.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Ubicaciones-api/internal/application/ledger"
	"github.com/jhoicas/Ubicaciones-api/internal/domain"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/capacity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/pkg/tracing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RetryPolicy reintentos ante domain.ErrConflict. MaxAttempts incluye el primer intento.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy 3 intentos con espera exponencial desde 20ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 20 * time.Millisecond}
}

// Request solicitud de asignación. Quantity nil = ausente; VolumeUsed nil = 0.
type Request struct {
	BinID      string
	ProductID  string
	Quantity   *decimal.Decimal
	VolumeUsed *decimal.Decimal
	ClientID   string
}

// Result asignación resultante, acción y coordenadas de la ubicación.
type Result struct {
	Allocation  *entity.Allocation
	Action      entity.AllocationAction
	Coordinates entity.Coordinates
}

// Service caso de uso Allocate.
type Service struct {
	ledger    CapacityLedger
	publisher EventPublisher
	retry     RetryPolicy
	log       zerolog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewService construye el servicio. publisher puede ser nil (no se publican eventos).
func NewService(l CapacityLedger, publisher EventPublisher, retry RetryPolicy, log zerolog.Logger) *Service {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Service{
		ledger:    l,
		publisher: publisher,
		retry:     retry,
		log:       log,
		sleep:     sleepCtx,
	}
}

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// Un decimal con exponente o dígitos fuera de esta ventana no cabe en int64 ni en NUMERIC(18,6);
// se descarta antes de compararlo, porque reescalarlo cuesta memoria proporcional al exponente.
const (
	maxExponent = 18
	maxDigits   = 38
)

func representable(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent && d.NumDigits() <= maxDigits
}

// normalize valida la forma de la solicitud sin tocar el ledger.
// La cantidad negativa se rechaza antes de truncar hacia cero; tras truncar debe ser >= 1.
func normalize(req Request) (ledger.ApplyInput, error) {
	in := ledger.ApplyInput{
		BinID:     strings.TrimSpace(req.BinID),
		ProductID: strings.TrimSpace(req.ProductID),
		ClientID:  req.ClientID,
		Volume:    decimal.Zero,
	}
	if in.BinID == "" {
		return in, domain.NewValidationError("bin_id", "es requerido")
	}
	if in.ProductID == "" {
		return in, domain.NewValidationError("product_id", "es requerido")
	}
	if req.Quantity == nil {
		return in, domain.NewValidationError("quantity", "es requerido")
	}
	if !representable(*req.Quantity) {
		return in, domain.NewValidationError("quantity", "fuera de rango")
	}
	if req.Quantity.IsNegative() {
		return in, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	qty := req.Quantity.Truncate(0)
	if qty.LessThan(decimal.NewFromInt(1)) {
		return in, domain.NewValidationError("quantity", "debe ser un entero >= 1")
	}
	if qty.GreaterThan(maxQuantity) {
		return in, domain.NewValidationError("quantity", "fuera de rango")
	}
	in.Quantity = qty.IntPart()
	if req.VolumeUsed != nil {
		vol := *req.VolumeUsed
		if !representable(vol) {
			return in, domain.NewValidationError("volume_used", "fuera de rango")
		}
		if vol.IsNegative() {
			return in, domain.NewValidationError("volume_used", "debe ser >= 0")
		}
		if !vol.Truncate(capacity.VolumeScale).Equal(vol) {
			return in, domain.NewValidationError("volume_used", "admite a lo sumo 6 decimales")
		}
		if vol.GreaterThanOrEqual(capacity.VolumeCeiling) {
			return in, domain.NewValidationError("volume_used", "fuera de rango")
		}
		in.Volume = vol
	}
	return in, nil
}

// Allocate valida, aplica la asignación en el ledger (reintentando conflictos) y devuelve
// la fila resultante con las coordenadas de la ubicación.
func (s *Service) Allocate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "allocation.Allocate", "INTERNAL")
	defer span.End()
	span.WithAttributes(map[string]string{"bin_id": req.BinID, "product_id": req.ProductID})

	res, err := s.allocate(ctx, req)
	span.SetStatus(err)
	if res != nil {
		span.WithAttributes(map[string]string{"action": string(res.Action)})
	}
	return res, err
}

func (s *Service) allocate(ctx context.Context, req Request) (*Result, error) {
	in, err := normalize(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.GetBin(ctx, in.BinID); err != nil {
		return nil, err
	}

	var applied *ledger.ApplyResult
	attempt := 1
	for ; ; attempt++ {
		applied, err = s.ledger.ApplyAllocation(ctx, in)
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt >= s.retry.MaxAttempts {
			break
		}
		s.log.Warn().Err(err).
			Str("bin_id", in.BinID).
			Str("product_id", in.ProductID).
			Int("attempt", attempt).
			Msg("conflicto en asignación, reintentando")
		if serr := s.sleep(ctx, s.backoff(attempt)); serr != nil {
			return nil, fmt.Errorf("allocate: %w", serr)
		}
	}
	if err != nil {
		s.logFailure(in, attempt, err)
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("allocate tras %d intentos: %w", attempt, err)
		}
		return nil, err
	}

	s.log.Debug().
		Str("bin_id", in.BinID).
		Str("product_id", in.ProductID).
		Str("action", string(applied.Action)).
		Int64("quantity", applied.Allocation.Quantity).
		Msg("asignación aplicada")

	result := &Result{
		Allocation:  applied.Allocation,
		Action:      applied.Action,
		Coordinates: applied.Bin.Coordinates,
	}
	s.publish(ctx, result)
	return result, nil
}

func (s *Service) logFailure(in ledger.ApplyInput, attempt int, err error) {
	var capErr *capacity.Error
	switch {
	case errors.As(err, &capErr):
		s.log.Info().Str("bin_id", in.BinID).Str("product_id", in.ProductID).
			Str("reason", capErr.Error()).Msg("asignación denegada")
	case errors.Is(err, domain.ErrBinNotFound):
		s.log.Info().Str("bin_id", in.BinID).Msg("ubicación no encontrada")
	case errors.Is(err, domain.ErrConflict):
		s.log.Warn().Err(err).Str("bin_id", in.BinID).Int("attempts", attempt).Msg("reintentos agotados")
	default:
		s.log.Error().Err(err).Str("bin_id", in.BinID).Str("product_id", in.ProductID).Msg("falla al asignar")
	}
}

// publish es best-effort: la fila ya está confirmada, un fallo solo se registra.
func (s *Service) publish(ctx context.Context, res *Result) {
	if s.publisher == nil {
		return
	}
	eventType := EventAllocationCreated
	if res.Action == entity.ActionUpdated {
		eventType = EventAllocationUpdated
	}
	ev := Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		Allocation:  toAllocationResponse(res.Allocation),
		Coordinates: toCoordinatesDTO(res.Coordinates),
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("event_id", ev.ID).Str("bin_id", res.Allocation.BinID).
			Msg("publicar evento de asignación")
	}
}

func (s *Service) backoff(attempt int) time.Duration {
	return s.retry.BaseDelay * time.Duration(1<<(attempt-1))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
