package payment

import (
	"context"
	"fmt"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/refund"

	"github.com/edumatch/tutor-scheduler/internal/models"
)

// Gateway is the external payment collaborator. Settlement and refund
// confirmation are asynchronous and out of scope; Refund only emits
// the instruction.
type Gateway interface {
	Refund(ctx context.Context, p *models.Payment, amount float64) error
}

// --------------------------------------------------
// Mercado Pago
// --------------------------------------------------

type MercadoPagoGateway struct {
	refunds refund.Client
}

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPagoGateway{
		refunds: refund.NewClient(cfg),
	}, nil
}

func (g *MercadoPagoGateway) Refund(
	ctx context.Context,
	p *models.Payment,
	amount float64,
) error {

	if p.ProviderPaymentID == nil {
		return fmt.Errorf("payment %s has no provider payment id", p.TransactionRef)
	}

	paymentID := int(*p.ProviderPaymentID)

	if amount >= p.Amount {
		if _, err := g.refunds.Create(ctx, paymentID); err != nil {
			return fmt.Errorf("mercadopago refund: %w", err)
		}
		return nil
	}

	if _, err := g.refunds.CreatePartialRefund(ctx, paymentID, amount); err != nil {
		return fmt.Errorf("mercadopago partial refund: %w", err)
	}
	return nil
}

var _ Gateway = (*MercadoPagoGateway)(nil)

// --------------------------------------------------
// Disabled
// --------------------------------------------------

// Disabled stands in when no gateway credentials are configured.
// Refund instructions fail and stay recorded for manual handling.
type Disabled struct{}

func (Disabled) Refund(_ context.Context, p *models.Payment, _ float64) error {
	return fmt.Errorf("payment gateway not configured, refund for %s not emitted", p.TransactionRef)
}

var _ Gateway = Disabled{}
