package billing

import (
	"context"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/domain/identity"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubscriptionStatus describes a user's current plan
type SubscriptionStatus struct {
	Tier   billing.Tier `json:"tier"`
	HasPro bool         `json:"hasPro"`
}

// UpgradeInput holds parameters for starting a pro upgrade
type UpgradeInput struct {
	UserID     uuid.UUID
	SuccessURL string
}

// UpgradeResult is the outcome of an upgrade request. When CheckoutURL is
// empty the provider attached the product directly and the plan is already
// active.
type UpgradeResult struct {
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	Upgraded    bool   `json:"upgraded"`
}

// SubscriptionService manages plan state against the metering provider
type SubscriptionService struct {
	users        identity.UserRepository
	provider     billing.Provider
	logger       *zap.Logger
	proProductID string
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	users identity.UserRepository,
	provider billing.Provider,
	logger *zap.Logger,
	proProductID string,
) *SubscriptionService {
	return &SubscriptionService{
		users:        users,
		provider:     provider,
		logger:       logger,
		proProductID: proProductID,
	}
}

// GetStatus returns the user's current subscription status
func (s *SubscriptionService) GetStatus(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SubscriptionStatus{
		Tier:   user.Plan,
		HasPro: user.Plan.HasPro(),
	}, nil
}

// Upgrade starts a pro upgrade. The provider decides whether payment is
// needed: a checkout URL means the client must complete payment first, an
// empty one means the product attached immediately and the plan flips now.
func (s *SubscriptionService) Upgrade(ctx context.Context, input UpgradeInput) (*UpgradeResult, error) {
	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user.Plan.HasPro() {
		return nil, shared.NewDomainError("ALREADY_SUBSCRIBED", "User already has an active pro subscription")
	}

	attach, err := s.provider.Attach(ctx, billing.AttachInput{
		CustomerID: user.ID.String(),
		ProductID:  s.proProductID,
		SuccessURL: input.SuccessURL,
	})
	if err != nil {
		return nil, err
	}

	if attach.CheckoutURL != "" {
		s.logger.Info("Upgrade checkout created",
			zap.String("user_id", user.ID.String()))
		return &UpgradeResult{CheckoutURL: attach.CheckoutURL}, nil
	}

	if err := s.activatePro(ctx, user); err != nil {
		return nil, err
	}
	return &UpgradeResult{Upgraded: true}, nil
}

// ConfirmUpgrade flips the plan to pro after a completed checkout. Idempotent:
// confirming an already-pro user is a no-op.
func (s *SubscriptionService) ConfirmUpgrade(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.Plan.HasPro() {
		if err := s.activatePro(ctx, user); err != nil {
			return nil, err
		}
	}

	return &SubscriptionStatus{Tier: user.Plan, HasPro: user.Plan.HasPro()}, nil
}

func (s *SubscriptionService) activatePro(ctx context.Context, user *identity.User) error {
	if err := user.SetPlan(billing.TierPro); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("User upgraded to pro", zap.String("user_id", user.ID.String()))
	return nil
}
