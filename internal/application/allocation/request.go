package allocation

import (
	"context"

	"github.com/jhoicas/Ubicaciones-api/internal/application/dto"
	"github.com/jhoicas/Ubicaciones-api/internal/domain"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/capacity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
)

// AllocateFromRequest adapta el request HTTP al caso de uso Allocate(ctx, Request).
// Si el body no trae client_id se usa defaultClientID (la empresa del token).
func (s *Service) AllocateFromRequest(ctx context.Context, defaultClientID string, in dto.AllocateRequest) (*dto.AllocateResponse, error) {
	qty, err := dto.ParseNumeric(in.Quantity)
	if err != nil {
		return nil, domain.NewValidationError("quantity", "debe ser numérica")
	}
	vol, err := dto.ParseNumeric(in.VolumeUsed)
	if err != nil {
		return nil, domain.NewValidationError("volume_used", "debe ser numérico")
	}
	clientID := in.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}
	res, err := s.Allocate(ctx, Request{
		BinID:      in.BinID,
		ProductID:  in.ProductID,
		Quantity:   qty,
		VolumeUsed: vol,
		ClientID:   clientID,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AllocateResponse{
		Allocation:  toAllocationResponse(res.Allocation),
		Action:      string(res.Action),
		Coordinates: toCoordinatesDTO(res.Coordinates),
	}, nil
}

// GetBin obtiene una ubicación.
func (s *Service) GetBin(ctx context.Context, binID string) (*dto.BinResponse, error) {
	bin, err := s.ledger.GetBin(ctx, binID)
	if err != nil {
		return nil, err
	}
	out := toBinResponse(bin)
	return &out, nil
}

// ListBins lista ubicaciones con paginación.
func (s *Service) ListBins(ctx context.Context, page dto.PageRequest) (*dto.BinListResponse, error) {
	page.DefaultPage()
	list, err := s.ledger.ListBins(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BinResponse, 0, len(list))
	for _, b := range list {
		items = append(items, toBinResponse(b))
	}
	return &dto.BinListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// GetOccupancy ocupación actual y capacidad restante de una ubicación.
func (s *Service) GetOccupancy(ctx context.Context, binID string) (*dto.OccupancyResponse, error) {
	bin, err := s.ledger.GetBin(ctx, binID)
	if err != nil {
		return nil, err
	}
	occ, err := s.ledger.GetOccupancy(ctx, binID)
	if err != nil {
		return nil, err
	}
	out := &dto.OccupancyResponse{
		BinID:           bin.ID,
		Coordinates:     toCoordinatesDTO(bin.Coordinates),
		MaxQuantity:     bin.MaxQuantity,
		MaxVolume:       bin.MaxVolume,
		CurrentQuantity: occ.Quantity,
		CurrentVolume:   occ.Volume,
	}
	qty, qtyOK, vol, volOK := capacity.Remaining(bin, occ)
	if qtyOK {
		out.RemainingQuantity = &qty
	}
	if volOK {
		out.RemainingVolume = &vol
	}
	return out, nil
}

// ListAllocations asignaciones de una ubicación existente.
func (s *Service) ListAllocations(ctx context.Context, binID string) (*dto.AllocationListResponse, error) {
	if _, err := s.ledger.GetBin(ctx, binID); err != nil {
		return nil, err
	}
	list, err := s.ledger.ListAllocations(ctx, binID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AllocationResponse, 0, len(list))
	for _, a := range list {
		items = append(items, toAllocationResponse(a))
	}
	return &dto.AllocationListResponse{BinID: binID, Items: items}, nil
}

func toCoordinatesDTO(c entity.Coordinates) dto.CoordinatesDTO {
	return dto.CoordinatesDTO{X: c.X, Y: c.Y, Z: c.Z}
}

func toAllocationResponse(a *entity.Allocation) dto.AllocationResponse {
	return dto.AllocationResponse{
		ID:         a.ID,
		BinID:      a.BinID,
		ProductID:  a.ProductID,
		Quantity:   a.Quantity,
		VolumeUsed: a.VolumeUsed,
		ClientID:   a.ClientID,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toBinResponse(b *entity.Bin) dto.BinResponse {
	return dto.BinResponse{
		ID:          b.ID,
		Label:       b.Label,
		Coordinates: toCoordinatesDTO(b.Coordinates),
		MaxQuantity: b.MaxQuantity,
		MaxVolume:   b.MaxVolume,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
