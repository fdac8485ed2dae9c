package stripewebhook

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/stripe/stripe-go/v84"
)

type employerUpdater interface {
	SetEmployerByCustomerID(ctx context.Context, customerID string, employer bool) (bool, error)
}

type ServiceParams struct {
	Users  employerUpdater
	Logger *logger.Logger
}

// Service maps Stripe billing events onto the employer capability of the
// user bound to the event's customer.
type Service struct {
	users employerUpdater
	logg  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{users: params.Users, logg: params.Logger}, nil
}

// HandleEvent grants the capability on a completed checkout and revokes it
// when the subscription ends or a renewal payment fails. Unknown event types
// and customers without a directory user are acknowledged and ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"stripe_event_id":   event.ID,
		"stripe_event_type": string(event.Type),
	})

	var (
		customer *stripe.Customer
		employer bool
	)
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
		}
		customer, employer = session.Customer, true
	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subscription")
		}
		customer = sub.Customer
	case stripe.EventTypeInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode invoice")
		}
		customer = invoice.Customer
	default:
		s.logg.Debug(ctx, "stripe event ignored")
		return nil
	}

	if customer == nil || customer.ID == "" {
		s.logg.Warn(ctx, "stripe event without customer id")
		return nil
	}
	ctx = s.logg.WithField(ctx, "stripe_customer_id", customer.ID)

	found, err := s.users.SetEmployerByCustomerID(ctx, customer.ID, employer)
	if err != nil {
		return err
	}
	if !found {
		s.logg.Warn(ctx, "no user bound to stripe customer")
		return nil
	}
	ctx = s.logg.WithField(ctx, "is_employer", employer)
	s.logg.Info(ctx, "employer capability updated")
	return nil
}
