package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state"
)

const (
	SlotName    = "delivery"
	SlotVersion = 1

	MsgLocationUnavailable = "Unable to get your location. Please enable location access and try again."
	MsgCheckFailed         = "Unable to check delivery availability. Please try again."
	MsgNotDeliverable      = "Delivery is not available at your location"
)

type DeliveryAPI interface {
	Calculate(ctx context.Context, lat, lng float64, orderAmount *float64) (*dto.DeliveryCalculateResponse, error)
	ListAreas(ctx context.Context) ([]domain.DeliveryArea, error)
	CheckArea(ctx context.Context, lat, lng float64) (*domain.AreaCheck, error)
}

// Checker owns the delivery verdict that gates checkout. Failures are state,
// never errors: a caller reads State() to find out why a check returned nil.
type Checker struct {
	api    DeliveryAPI
	slot   *state.Slot[domain.DeliveryState]
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	current domain.DeliveryState
	issued  uint64
}

func NewChecker(api DeliveryAPI, repo state.Repository, logger *zap.Logger) *Checker {
	return &Checker{
		api:     api,
		slot:    state.NewSlot[domain.DeliveryState](repo, SlotName, SlotVersion),
		logger:  logger,
		now:     time.Now,
		current: domain.DeliveryState{Status: domain.DeliveryStatusIdle},
	}
}

// Init restores the last persisted verdict. A check that was still running
// when the process stopped comes back as idle.
func (c *Checker) Init(ctx context.Context) error {
	restored, ok, err := c.slot.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if restored.Status == domain.DeliveryStatusChecking || restored.Status == "" {
		restored = domain.DeliveryState{Status: domain.DeliveryStatusIdle}
	}

	c.mu.Lock()
	restored.Token = c.issued
	c.current = restored
	c.mu.Unlock()
	return nil
}

// Reset drops the verdict and its persisted copy. Checks still in flight are
// discarded when they answer.
func (c *Checker) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	c.current = domain.DeliveryState{Status: domain.DeliveryStatusIdle, Token: c.issued}
	c.mu.Unlock()

	return c.slot.Clear(ctx)
}

func (c *Checker) State() domain.DeliveryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneState(c.current)
}

// CheckDeliveryAvailability runs one eligibility check and returns the
// verdict, or nil when the point is not deliverable, the location is unusable
// or the server could not be reached. Each call supersedes the previous one.
func (c *Checker) CheckDeliveryAvailability(ctx context.Context, lat, lng float64, orderAmount *float64) *domain.DeliveryCheckResult {
	coords := domain.Coordinates{Lat: lat, Lng: lng}

	c.mu.Lock()
	c.issued++
	token := c.issued
	if !coords.Valid() {
		c.current = domain.DeliveryState{
			Status: domain.DeliveryStatusErrored,
			Error:  MsgLocationUnavailable,
			Token:  token,
		}
		c.mu.Unlock()
		c.logger.Info("delivery check skipped, invalid coordinates", zap.Uint64("token", token))
		c.persist(ctx)
		return nil
	}
	c.current = domain.DeliveryState{
		Status:      domain.DeliveryStatusChecking,
		Coordinates: &coords,
		Token:       token,
	}
	c.mu.Unlock()

	logger := c.logger.With(zap.Uint64("token", token), zap.Float64("lat", lat), zap.Float64("lng", lng))

	resp, err := c.api.Calculate(ctx, lat, lng, orderAmount)

	next := domain.DeliveryState{Coordinates: &coords, Token: token}
	var result *domain.DeliveryCheckResult
	switch {
	case err != nil:
		logger.Warn("delivery check failed", zap.Error(err))
		next.Status = domain.DeliveryStatusErrored
		next.Error = MsgCheckFailed
	case resp.Eligible():
		result = c.toResult(resp)
		next.Status = domain.DeliveryStatusEligible
		next.Result = result
	default:
		next.Status = domain.DeliveryStatusIneligible
		next.Error = rejectionMessage(resp)
		logger.Info("delivery not available", zap.String("reason", next.Error))
	}

	c.mu.Lock()
	if token != c.issued {
		c.mu.Unlock()
		logger.Debug("discarding superseded delivery check")
		return nil
	}
	c.current = next
	c.mu.Unlock()

	c.persist(ctx)
	if result == nil {
		return nil
	}
	copied := *result
	return &copied
}

func (c *Checker) ListAreas(ctx context.Context) ([]domain.DeliveryArea, error) {
	return c.api.ListAreas(ctx)
}

// CheckArea looks up the service area containing a point without pricing
// delivery. It does not touch the verdict.
func (c *Checker) CheckArea(ctx context.Context, lat, lng float64) (*domain.AreaCheck, error) {
	if !(domain.Coordinates{Lat: lat, Lng: lng}).Valid() {
		return &domain.AreaCheck{InService: false, Message: MsgLocationUnavailable}, nil
	}
	return c.api.CheckArea(ctx, lat, lng)
}

func (c *Checker) toResult(resp *dto.DeliveryCalculateResponse) *domain.DeliveryCheckResult {
	result := &domain.DeliveryCheckResult{
		InService:      resp.InService,
		IsDeliverable:  resp.Deliverable,
		Fee:            resp.DeliveryFee.Float64(),
		FeeStructure:   feeStructure(resp),
		MinOrderAmount: resp.MinOrderAmount.Float64(),
		EstimatedTime:  resp.EstimatedTime,
		Reason:         resp.Reason,
		Area:           resp.Area,
		City:           resp.City,
		DistanceKm:     resp.DistanceKm.Float64(),
		CheckedAt:      c.now().UTC(),
	}
	if resp.FreeDeliveryAbove != nil {
		threshold := resp.FreeDeliveryAbove.Float64()
		result.FreeDeliveryAbove = &threshold
	}
	return result
}

// feeStructure prefers the typed field; older servers only describe the
// pricing in the free-text reason.
func feeStructure(resp *dto.DeliveryCalculateResponse) domain.FeeStructure {
	switch domain.FeeStructure(strings.ToLower(strings.TrimSpace(resp.FeeStructure))) {
	case domain.FeeStructureDistance:
		return domain.FeeStructureDistance
	case domain.FeeStructureFlat:
		return domain.FeeStructureFlat
	}

	// Casers keep state between calls, so each lookup gets its own.
	if strings.Contains(cases.Fold().String(resp.Reason), "distance") {
		return domain.FeeStructureDistance
	}
	return domain.FeeStructureFlat
}

func (c *Checker) persist(ctx context.Context) {
	if err := c.slot.Store(ctx, c.State()); err != nil {
		c.logger.Warn("persisting delivery state failed", zap.Error(err))
	}
}

func rejectionMessage(resp *dto.DeliveryCalculateResponse) string {
	if msg := strings.TrimSpace(resp.Message); msg != "" {
		return resp.Message
	}
	if reason := strings.TrimSpace(resp.Reason); reason != "" {
		return resp.Reason
	}
	return MsgNotDeliverable
}

func cloneState(s domain.DeliveryState) domain.DeliveryState {
	if s.Result != nil {
		result := *s.Result
		s.Result = &result
	}
	if s.Coordinates != nil {
		coords := *s.Coordinates
		s.Coordinates = &coords
	}
	return s
}
