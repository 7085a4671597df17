package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	providerRepo "skillbridge/database/repository/provider"
	"skillbridge/models"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// ErrNoPayoutAccount means the provider has not connected a payout account yet.
var ErrNoPayoutAccount = errors.New("provider has no connected payout account")

// TransferAPI is the subset of the Stripe transfer client used for payouts.
type TransferAPI interface {
	New(params *stripe.TransferParams) (*stripe.Transfer, error)
}

// PayoutService releases an engagement fee to the provider's connected account.
type PayoutService struct {
	Transfers       TransferAPI
	Providers       providerRepo.ProviderRepository
	DefaultCurrency string
	Logger          *zap.Logger
}

func NewPayoutService(transfers TransferAPI, providers providerRepo.ProviderRepository, currency string, logger *zap.Logger) *PayoutService {
	return &PayoutService{
		Transfers:       transfers,
		Providers:       providers,
		DefaultCurrency: currency,
		Logger:          logger,
	}
}

// Release creates a transfer for the payout. The engagement id is the idempotency
// key so a retried task never pays twice.
func (s *PayoutService) Release(ctx context.Context, p models.PayoutPayload) (string, error) {
	amount, err := ParseFeeCents(p.Fee)
	if err != nil {
		return "", fmt.Errorf("invalid payout amount: %w", err)
	}
	provider, err := s.Providers.GetByID(ctx, p.ProviderID)
	if err != nil {
		return "", err
	}
	account := provider.PaymentDetails.StripeAccountID
	if account == "" {
		return "", fmt.Errorf("provider %s: %w", p.ProviderID, ErrNoPayoutAccount)
	}
	currency := strings.ToLower(provider.PaymentDetails.Currency)
	if currency == "" {
		currency = strings.ToLower(s.DefaultCurrency)
	}

	params := &stripe.TransferParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		Destination:   stripe.String(account),
		TransferGroup: stripe.String(p.EngagementID),
	}
	params.Context = ctx
	params.SetIdempotencyKey("payout-" + p.EngagementID)
	params.AddMetadata("engagementId", p.EngagementID)
	params.AddMetadata("providerId", p.ProviderID)

	t, err := s.Transfers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe transfer failed: %w", err)
	}
	s.Logger.Info("payout released",
		zap.String("engagementId", p.EngagementID),
		zap.String("providerId", p.ProviderID),
		zap.String("transferId", t.ID),
		zap.Int64("amount", amount),
		zap.String("currency", currency))
	return t.ID, nil
}
