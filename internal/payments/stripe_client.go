package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	pkgstripe "github.com/gouravrajak985/project45/pkg/stripe"
)

// StripeIntentClient exposes the subset of Stripe operations the payment
// service needs.
type StripeIntentClient interface {
	CreateIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeClientWrapper struct {
	intents *paymentintent.Client
}

// NewStripeClient wraps the provided Stripe client so the payment service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeIntentClient {
	if api == nil || api.PaymentIntents() == nil {
		return nil
	}
	return &stripeClientWrapper{intents: api.PaymentIntents()}
}

func (w *stripeClientWrapper) CreateIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return w.intents.New(params)
}
