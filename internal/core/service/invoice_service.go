package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

const defaultGenerationWorkers = 4

// DedupChecker abstracts the idempotency store (Redis) for generation
// requests carrying an Idempotency-Key.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

type InvoiceService struct {
	invoices   ports.InvoiceRepository
	treatments ports.TreatmentRepository
	dedup      DedupChecker
	workers    int
	dueDays    int
	logger     zerolog.Logger
}

// NewInvoiceService builds the invoice aggregator. workers bounds the
// per-client fan-out of a generation run; dueDays sets each invoice's
// due date relative to its invoice date.
func NewInvoiceService(
	invoices ports.InvoiceRepository,
	treatments ports.TreatmentRepository,
	dedup DedupChecker,
	workers int,
	dueDays int,
	logger zerolog.Logger,
) *InvoiceService {
	if workers <= 0 {
		workers = defaultGenerationWorkers
	}
	return &InvoiceService{
		invoices:   invoices,
		treatments: treatments,
		dedup:      dedup,
		workers:    workers,
		dueDays:    dueDays,
		logger:     logger,
	}
}

// GenerateInvoices turns each target client's unbilled treatments into
// one open invoice. Every client is processed in its own transaction:
// one client failing, conflicting, or having nothing to bill never
// affects the others. Concurrent runs over the same client serialize on
// the ledger's optimistic re-check and surface as a retryable conflict.
func (s *InvoiceService) GenerateInvoices(ctx context.Context, input ports.GenerateInvoicesInput) (*ports.GenerationResult, error) {
	runID := uuid.NewString()

	asOf := input.AsOfDate
	if asOf.IsZero() {
		now := time.Now().UTC()
		asOf = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	// Idempotency check — acknowledge replays without generating.
	if input.IdempotencyKey != "" && s.dedup != nil {
		isDup, err := s.dedup.IsDuplicate(ctx, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("dedup check failed, processing anyway")
		} else if isDup {
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Msg("idempotent replay of generation request")
			return &ports.GenerationResult{RunID: runID, AlreadyProcessed: true}, nil
		}
	}

	clientIDs := input.ClientIDs
	if len(clientIDs) == 0 {
		ids, err := s.treatments.ClientsWithUnbilled(ctx, asOf)
		if err != nil {
			return nil, fmt.Errorf("generate invoices: resolve clients: %w", err)
		}
		clientIDs = ids
	}

	outcomes := make([]ports.ClientOutcome, len(clientIDs))

	// Fan out one worker per client up to the configured bound. Each
	// slot in outcomes belongs to exactly one job, so no further
	// synchronization is needed on the slice.
	workers := s.workers
	if workers > len(clientIDs) {
		workers = len(clientIDs)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.generateForClient(ctx, clientIDs[i], asOf)
			}
		}()
	}
	for i := range clientIDs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	created := 0
	for _, o := range outcomes {
		if o.Outcome == ports.OutcomeCreated {
			created++
		}
	}

	// A run that created nothing leaves the key unconsumed, so a caller
	// retrying a conflicted or failed run under the same key gets a real
	// retry instead of an empty replay acknowledgement.
	if input.IdempotencyKey != "" && s.dedup != nil && created > 0 {
		if err := s.dedup.Mark(ctx, input.IdempotencyKey); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to set dedup key")
		}
	}

	s.logger.Info().
		Str("run_id", runID).
		Str("as_of", asOf.Format("2006-01-02")).
		Int("clients", len(clientIDs)).
		Int("created", created).
		Msg("invoice generation run finished")

	return &ports.GenerationResult{RunID: runID, Created: created, Clients: outcomes}, nil
}

// generateForClient builds and persists one client's invoice. All
// failure modes map to a per-client outcome; the run itself never fails
// because of a single client.
func (s *InvoiceService) generateForClient(ctx context.Context, clientID int64, asOf time.Time) ports.ClientOutcome {
	unbilled, err := s.treatments.UnbilledForClient(ctx, clientID, asOf)
	if err != nil {
		s.logger.Error().Err(err).Int64("client_id", clientID).Msg("failed to load unbilled treatments")
		return ports.ClientOutcome{ClientID: clientID, Outcome: ports.OutcomeFailed, Reason: "storage error, retry later"}
	}
	if len(unbilled) == 0 {
		return ports.ClientOutcome{ClientID: clientID, Outcome: ports.OutcomeSkippedEmpty}
	}

	lines := make([]domain.InvoiceLine, 0, len(unbilled))
	treatmentIDs := make([]int64, 0, len(unbilled))
	total := decimal.Zero
	for _, t := range unbilled {
		amount, err := domain.ResolveLineAmount(domain.TreatmentMethod{
			Name:        t.MethodName,
			BillingType: t.BillingType,
			Rate:        t.Rate,
		}, t.DurationHours)
		if err != nil {
			// One bad treatment rejects the client's whole batch;
			// nothing is persisted for this client.
			s.logger.Warn().Err(err).Int64("client_id", clientID).Int64("treatment_id", t.ID).Msg("billing input rejected")
			return ports.ClientOutcome{ClientID: clientID, Outcome: ports.OutcomeFailed, Reason: err.Error()}
		}
		lines = append(lines, domain.InvoiceLine{
			TreatmentID: t.ID,
			Description: fmt.Sprintf("%s (%s)", t.MethodName, t.TreatmentDate.Format("2006-01-02")),
			Amount:      amount,
		})
		treatmentIDs = append(treatmentIDs, t.ID)
		total = total.Add(amount)
	}

	invoice := &domain.Invoice{
		ClientID:    clientID,
		InvoiceDate: asOf,
		DueDate:     asOf.AddDate(0, 0, s.dueDays),
		Status:      domain.StatusOpen,
		TotalAmount: total,
	}
	if err := s.invoices.CreateWithLines(ctx, invoice, lines, treatmentIDs); err != nil {
		if errors.Is(err, domain.ErrAlreadyBilled) {
			s.logger.Warn().Int64("client_id", clientID).Msg("generation conflict, treatments claimed concurrently")
			return ports.ClientOutcome{ClientID: clientID, Outcome: ports.OutcomeConflict, Reason: "treatments were billed concurrently, retry"}
		}
		s.logger.Error().Err(err).Int64("client_id", clientID).Msg("failed to persist invoice")
		return ports.ClientOutcome{ClientID: clientID, Outcome: ports.OutcomeFailed, Reason: "storage error, retry later"}
	}

	s.logger.Info().
		Int64("client_id", clientID).
		Int64("invoice_id", invoice.ID).
		Str("invoice_number", invoice.InvoiceNumber).
		Str("total_amount", invoice.TotalAmount.StringFixed(2)).
		Int("lines", len(lines)).
		Msg("invoice created")

	return ports.ClientOutcome{
		ClientID:      clientID,
		Outcome:       ports.OutcomeCreated,
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
	}
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id int64) (*ports.InvoiceDetail, error) {
	return s.invoices.Detail(ctx, id)
}

func (s *InvoiceService) ListInvoices(ctx context.Context, filter ports.ListInvoicesFilter) ([]ports.InvoiceSummary, error) {
	return s.invoices.List(ctx, filter)
}

// TransitionInvoice applies the invoice state machine: open → paid and
// open → void are the only legal moves. Voiding releases the invoice's
// treatments back to the unbilled pool in the same transaction.
func (s *InvoiceService) TransitionInvoice(ctx context.Context, id int64, target string) (*ports.InvoiceDetail, error) {
	next := domain.InvoiceStatus(target)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, target)
	}

	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, invoice.Status, next)
	}

	if next == domain.StatusVoid {
		err = s.invoices.Void(ctx, id)
	} else {
		err = s.invoices.TransitionStatus(ctx, id, invoice.Status, next)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("invoice_id", id).
		Str("invoice_number", invoice.InvoiceNumber).
		Str("from", string(invoice.Status)).
		Str("to", string(next)).
		Msg("invoice status changed")

	return s.invoices.Detail(ctx, id)
}
