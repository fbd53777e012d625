package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

type RemoteClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

type DeliveryService struct {
	client RemoteClient
}

func NewDeliveryService(client RemoteClient) *DeliveryService {
	return &DeliveryService{client: client}
}

// Calculate asks the server to price delivery to a point. Both the eligible
// and the rejected answers come back as a response; only transport failures
// are errors.
func (s *DeliveryService) Calculate(ctx context.Context, lat, lng float64, orderAmount *float64) (*dto.DeliveryCalculateResponse, error) {
	var resp dto.DeliveryCalculateResponse
	err := s.client.Post(ctx, "/delivery/calculate", dto.DeliveryCalculateRequest{
		Lat:         lat,
		Lng:         lng,
		OrderAmount: orderAmount,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *DeliveryService) ListAreas(ctx context.Context) ([]domain.DeliveryArea, error) {
	var env dto.AreasEnvelope
	if err := s.client.Get(ctx, "/areas", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, rejected(env.Message, "Unable to load delivery areas.")
	}

	areas := make([]domain.DeliveryArea, 0, len(env.Areas))
	for _, a := range env.Areas {
		areas = append(areas, toArea(a))
	}
	return areas, nil
}

func (s *DeliveryService) CheckArea(ctx context.Context, lat, lng float64) (*domain.AreaCheck, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	var env dto.AreaCheckEnvelope
	if err := s.client.Get(ctx, "/areas/check", query, &env); err != nil {
		return nil, err
	}

	check := &domain.AreaCheck{
		InService: env.Success && env.InService,
		Message:   env.Message,
	}
	if env.Area != nil {
		area := toArea(*env.Area)
		check.Area = &area
	}
	return check, nil
}

func toArea(a dto.AreaDTO) domain.DeliveryArea {
	area := domain.DeliveryArea{
		ID:   a.AreaID(),
		Name: a.Name,
		City: a.City,
	}
	if a.Center != nil {
		area.Center = &domain.Coordinates{
			Lat: a.Center.Lat.Float64(),
			Lng: a.Center.Lng.Float64(),
		}
	}
	return area
}

// rejected turns a 2xx answer with success:false into the same error type a
// failed status would have produced.
func rejected(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return apperrors.NewTransportError(message, http.StatusUnprocessableEntity, nil)
}
