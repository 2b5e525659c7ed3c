package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/gouravrajak985/project45/internal/orders"
	"github.com/gouravrajak985/project45/pkg/db/models"
	pkgerrors "github.com/gouravrajak985/project45/pkg/errors"
	"github.com/gouravrajak985/project45/pkg/logger"
)

const (
	// MetadataOrderID correlates a provider intent back to the order it pays.
	MetadataOrderID = "order_id"
	// MetadataBuyerID tags the intent with the purchasing principal.
	MetadataBuyerID = "buyer_id"
)

type lifecycleService interface {
	Get(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error)
	Pay(ctx context.Context, actor *orders.Actor, orderID uuid.UUID, result models.PaymentResult) (*models.Order, error)
}

// Service bridges the payment provider and the order lifecycle: intent
// creation on the way out, webhook reconciliation on the way back in.
type Service struct {
	lifecycle     lifecycleService
	stripe        StripeIntentClient
	intentTimeout time.Duration
	logg          *logger.Logger
}

// NewService builds a payment service with the required dependencies.
func NewService(lifecycle lifecycleService, stripeClient StripeIntentClient, intentTimeout time.Duration, logg *logger.Logger) (*Service, error) {
	if lifecycle == nil {
		return nil, fmt.Errorf("order lifecycle service required")
	}
	if stripeClient == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	return &Service{
		lifecycle:     lifecycle,
		stripe:        stripeClient,
		intentTimeout: intentTimeout,
		logg:          logg,
	}, nil
}

// CreateIntent requests a provider-side payment intent for the order's
// contract total and returns the opaque client secret.
func (s *Service) CreateIntent(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (string, error) {
	order, err := s.lifecycle.Get(ctx, actor, orderID)
	if err != nil {
		return "", err
	}
	if order.BuyerID != actor.UserID {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "only the buyer can start payment")
	}
	if order.IsPaid {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(order.TotalCents)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.AddMetadata(MetadataOrderID, order.ID.String())
	params.AddMetadata(MetadataBuyerID, order.BuyerID.String())

	callCtx := ctx
	if s.intentTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.intentTimeout)
		defer cancel()
	}

	intent, err := s.stripe.CreateIntent(callCtx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}
	return intent.ClientSecret, nil
}

// HandleEvent applies a verified provider event to the order lifecycle.
// Events that cannot be correlated to an order are acknowledged and logged;
// providers retry on non-2xx, and retrying will not make the metadata appear.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
		}
		return s.reconcileIntent(ctx, event, &intent)
	default:
		return nil
	}
}

func (s *Service) reconcileIntent(ctx context.Context, event *stripe.Event, intent *stripe.PaymentIntent) error {
	raw, ok := intent.Metadata[MetadataOrderID]
	if !ok || raw == "" {
		s.warn(ctx, event.ID, "stripe event carries no order id metadata")
		return nil
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		s.warn(ctx, event.ID, "stripe event carries malformed order id metadata")
		return nil
	}

	settledAt := time.Unix(event.Created, 0).UTC()
	result := models.PaymentResult{
		ID:         intent.ID,
		Status:     string(intent.Status),
		UpdateTime: &settledAt,
		PayerEmail: intent.ReceiptEmail,
	}

	if _, err := s.lifecycle.Pay(ctx, nil, orderID, result); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			s.warn(ctx, event.ID, "stripe event references unknown order")
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) warn(ctx context.Context, eventID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "stripe_event_id", eventID), msg)
}
