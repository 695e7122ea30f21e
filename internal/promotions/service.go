package promotions

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Store is the persistence contract used by the service.
type Store interface {
	ListPromos(ctx context.Context, restaurantID uuid.UUID) ([]PromoCode, error)
	GetPromo(ctx context.Context, restaurantID, id uuid.UUID) (PromoCode, error)
	GetPromoByCode(ctx context.Context, restaurantID uuid.UUID, code string) (PromoCode, error)
	CreatePromo(ctx context.Context, p PromoCode) (PromoCode, error)
	UpdatePromo(ctx context.Context, p PromoCode) (PromoCode, error)
	DeletePromo(ctx context.Context, restaurantID, id uuid.UUID) error
	RedeemPromo(ctx context.Context, restaurantID uuid.UUID, code string) (PromoCode, error)
	ReleasePromo(ctx context.Context, restaurantID uuid.UUID, code string) error
	ListGiftCards(ctx context.Context, restaurantID uuid.UUID) ([]GiftCard, error)
	CreateGiftCard(ctx context.Context, c GiftCard) (GiftCard, error)
	GetGiftCardByCode(ctx context.Context, restaurantID uuid.UUID, code string) (GiftCard, error)
	DeductGiftCard(ctx context.Context, restaurantID uuid.UUID, code string, amount int64) (GiftCard, error)
}

// Service orchestrates promo code and gift card operations.
type Service struct {
	logger *slog.Logger
	store  Store
	audit  audit.Recorder
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, store Store, recorder audit.Recorder) *Service {
	return &Service{logger: logger, store: store, audit: recorder}
}

// NormalizeCode canonicalizes user-entered codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) ListPromos(ctx context.Context, tc tenant.Context) ([]PromoCode, error) {
	return s.store.ListPromos(ctx, tc.RestaurantID)
}

func (s *Service) CreatePromo(ctx context.Context, tc tenant.Context, req CreatePromoRequest) (PromoCode, error) {
	created, err := s.store.CreatePromo(ctx, PromoCode{
		ID:           uuid.New(),
		RestaurantID: tc.RestaurantID,
		Code:         NormalizeCode(req.Code),
		PercentOff:   req.PercentOff,
		MaxUses:      req.MaxUses,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		return PromoCode{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionCreate, audit.EntityPromoCode, created.ID.String())
	return created, nil
}

func (s *Service) UpdatePromo(ctx context.Context, tc tenant.Context, id uuid.UUID, req UpdatePromoRequest) (PromoCode, error) {
	current, err := s.store.GetPromo(ctx, tc.RestaurantID, id)
	if err != nil {
		return PromoCode{}, err
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if req.MaxUses != nil {
		current.MaxUses = *req.MaxUses
	}
	if req.ExpiresAt != nil {
		current.ExpiresAt = req.ExpiresAt
	}

	updated, err := s.store.UpdatePromo(ctx, current)
	if err != nil {
		return PromoCode{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionUpdate, audit.EntityPromoCode, id.String())
	return updated, nil
}

func (s *Service) DeletePromo(ctx context.Context, tc tenant.Context, id uuid.UUID) error {
	if err := s.store.DeletePromo(ctx, tc.RestaurantID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, tc, audit.ActionDelete, audit.EntityPromoCode, id.String())
	return nil
}

// Redeem consumes one use of a promo code and reports its percent discount.
// Called by order placement.
func (s *Service) Redeem(ctx context.Context, restaurantID uuid.UUID, code string) (int64, error) {
	promo, err := s.store.RedeemPromo(ctx, restaurantID, NormalizeCode(code))
	if err != nil {
		return 0, err
	}
	return promo.PercentOff, nil
}

// Release returns a use consumed by a placement that later failed.
func (s *Service) Release(ctx context.Context, restaurantID uuid.UUID, code string) {
	if err := s.store.ReleasePromo(ctx, restaurantID, NormalizeCode(code)); err != nil {
		s.logger.Warn("promo release failed", "code", code, "error", err)
	}
}

func (s *Service) ListGiftCards(ctx context.Context, tc tenant.Context) ([]GiftCard, error) {
	return s.store.ListGiftCards(ctx, tc.RestaurantID)
}

func (s *Service) CreateGiftCard(ctx context.Context, tc tenant.Context, req CreateGiftCardRequest) (GiftCard, error) {
	created, err := s.store.CreateGiftCard(ctx, GiftCard{
		ID:                 uuid.New(),
		RestaurantID:       tc.RestaurantID,
		Code:               NormalizeCode(req.Code),
		InitialAmountCents: req.AmountCents,
	})
	if err != nil {
		return GiftCard{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionCreate, audit.EntityGiftCard, created.ID.String())
	return created, nil
}

// RedeemGiftCard deducts an amount from a card balance. Rejections leave the
// balance untouched.
func (s *Service) RedeemGiftCard(ctx context.Context, tc tenant.Context, req RedeemGiftCardRequest) (GiftCard, error) {
	card, err := s.store.DeductGiftCard(ctx, tc.RestaurantID, NormalizeCode(req.Code), req.AmountCents)
	if err != nil {
		return GiftCard{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionRedeem, audit.EntityGiftCard, card.ID.String())
	return card, nil
}

func (s *Service) recordAudit(ctx context.Context, tc tenant.Context, action audit.Action, entity audit.Entity, id string) {
	s.audit.Record(ctx, audit.Entry{
		RestaurantID: tc.RestaurantID,
		UserID:       tc.UserID,
		UserEmail:    tc.UserEmail,
		Action:       action,
		EntityType:   entity,
		EntityID:     id,
	})
}
