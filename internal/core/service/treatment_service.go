package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

type TreatmentService struct {
	methods    ports.TreatmentMethodRepository
	treatments ports.TreatmentRepository
	clients    ports.ClientRepository
	logger     zerolog.Logger
}

func NewTreatmentService(
	methods ports.TreatmentMethodRepository,
	treatments ports.TreatmentRepository,
	clients ports.ClientRepository,
	logger zerolog.Logger,
) *TreatmentService {
	return &TreatmentService{methods: methods, treatments: treatments, clients: clients, logger: logger}
}

func (s *TreatmentService) CreateTreatmentMethod(ctx context.Context, input ports.CreateTreatmentMethodInput) (*domain.TreatmentMethod, error) {
	billingType := domain.BillingType(input.BillingType)
	if !billingType.Valid() {
		return nil, fmt.Errorf("%w: billing_type must be hourly or session, got %q", domain.ErrInvalidBillingInput, input.BillingType)
	}

	rate, err := decimal.NewFromString(input.Rate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid rate %q", domain.ErrInvalidBillingInput, input.Rate)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: rate cannot be negative", domain.ErrInvalidBillingInput)
	}

	method := &domain.TreatmentMethod{
		Name:        input.Name,
		BillingType: billingType,
		Rate:        rate,
	}
	if err := s.methods.Create(ctx, method); err != nil {
		s.logger.Error().Err(err).Msg("failed to create treatment method")
		return nil, fmt.Errorf("create treatment method: %w", err)
	}
	s.logger.Info().Int64("method_id", method.ID).Str("name", method.Name).Str("billing_type", string(billingType)).Msg("treatment method created")
	return method, nil
}

func (s *TreatmentService) ListTreatmentMethods(ctx context.Context) ([]domain.TreatmentMethod, error) {
	return s.methods.List(ctx)
}

// CreateTreatment validates the billing-type/duration pairing against
// the referenced method before persisting, so invalid combinations
// never reach invoice generation.
func (s *TreatmentService) CreateTreatment(ctx context.Context, input ports.CreateTreatmentInput) (*domain.Treatment, error) {
	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		return nil, err
	}
	method, err := s.methods.FindByID(ctx, input.TreatmentMethodID)
	if err != nil {
		return nil, err
	}

	var duration decimal.NullDecimal
	if input.DurationHours != nil {
		d, err := decimal.NewFromString(*input.DurationHours)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid duration_hours %q", domain.ErrInvalidBillingInput, *input.DurationHours)
		}
		duration = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	if err := domain.ValidateDuration(method.BillingType, duration); err != nil {
		return nil, err
	}

	treatment := &domain.Treatment{
		ClientID:          input.ClientID,
		TreatmentMethodID: input.TreatmentMethodID,
		TreatmentDate:     input.TreatmentDate,
		DurationHours:     duration,
		Notes:             input.Notes,
	}
	if err := s.treatments.Create(ctx, treatment); err != nil {
		var ce *domain.ConstraintError
		if errors.As(err, &ce) {
			s.logger.Warn().Str("constraint", ce.Constraint).Msg("treatment rejected by constraint")
		} else {
			s.logger.Error().Err(err).Msg("failed to create treatment")
		}
		return nil, fmt.Errorf("create treatment: %w", err)
	}
	s.logger.Info().
		Int64("treatment_id", treatment.ID).
		Int64("client_id", treatment.ClientID).
		Int64("method_id", treatment.TreatmentMethodID).
		Msg("treatment created")
	return treatment, nil
}

func (s *TreatmentService) ListTreatments(ctx context.Context) ([]ports.TreatmentRow, error) {
	return s.treatments.List(ctx)
}
