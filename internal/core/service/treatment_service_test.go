package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

type stubClientRepo struct {
	clients map[int64]*domain.Client
	nextID  int64
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[int64]*domain.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) error {
	r.nextID++
	c.ID = r.nextID
	clone := *c
	r.clients[c.ID] = &clone
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id int64) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) List(_ context.Context) ([]domain.Client, error) {
	out := make([]domain.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, nil
}

type stubMethodRepo struct {
	methods map[int64]*domain.TreatmentMethod
	nextID  int64
}

func newStubMethodRepo() *stubMethodRepo {
	return &stubMethodRepo{methods: make(map[int64]*domain.TreatmentMethod)}
}

func (r *stubMethodRepo) Create(_ context.Context, m *domain.TreatmentMethod) error {
	r.nextID++
	m.ID = r.nextID
	clone := *m
	r.methods[m.ID] = &clone
	return nil
}

func (r *stubMethodRepo) FindByID(_ context.Context, id int64) (*domain.TreatmentMethod, error) {
	m, ok := r.methods[id]
	if !ok {
		return nil, domain.ErrTreatmentMethodNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *stubMethodRepo) List(_ context.Context) ([]domain.TreatmentMethod, error) {
	out := make([]domain.TreatmentMethod, 0, len(r.methods))
	for _, m := range r.methods {
		out = append(out, *m)
	}
	return out, nil
}

func newTestTreatmentService(t *testing.T) (*TreatmentService, *stubClientRepo, *stubMethodRepo) {
	t.Helper()
	clients := newStubClientRepo()
	methods := newStubMethodRepo()
	svc := NewTreatmentService(methods, newStubTreatmentRepo(), clients, zerolog.Nop())
	return svc, clients, methods
}

func seedClient(t *testing.T, repo *stubClientRepo) int64 {
	t.Helper()
	c := &domain.Client{Name: "Jan de Vries"}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c.ID
}

func seedMethod(t *testing.T, repo *stubMethodRepo, billingType domain.BillingType) int64 {
	t.Helper()
	m := &domain.TreatmentMethod{Name: "Fysiotherapie", BillingType: billingType, Rate: mustDec(t, "50.00")}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("seed method: %v", err)
	}
	return m.ID
}

func strPtr(s string) *string { return &s }

func TestCreateTreatmentMethod(t *testing.T) {
	svc, _, _ := newTestTreatmentService(t)

	method, err := svc.CreateTreatmentMethod(context.Background(), ports.CreateTreatmentMethodInput{
		Name:        "Intake",
		BillingType: "session",
		Rate:        "80.00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if !method.Rate.Equal(decimal.New(80, 0)) {
		t.Fatalf("rate: got %s", method.Rate)
	}
}

func TestCreateTreatmentMethod_Invalid(t *testing.T) {
	svc, _, _ := newTestTreatmentService(t)

	tests := []struct {
		name  string
		input ports.CreateTreatmentMethodInput
	}{
		{"unknown billing type", ports.CreateTreatmentMethodInput{Name: "X", BillingType: "weekly", Rate: "10"}},
		{"malformed rate", ports.CreateTreatmentMethodInput{Name: "X", BillingType: "session", Rate: "ten"}},
		{"negative rate", ports.CreateTreatmentMethodInput{Name: "X", BillingType: "session", Rate: "-5.00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTreatmentMethod(context.Background(), tt.input); !errors.Is(err, domain.ErrInvalidBillingInput) {
				t.Fatalf("expected ErrInvalidBillingInput, got %v", err)
			}
		})
	}
}

func TestCreateTreatment_HourlyRequiresDuration(t *testing.T) {
	svc, clients, methods := newTestTreatmentService(t)
	clientID := seedClient(t, clients)
	methodID := seedMethod(t, methods, domain.BillingHourly)

	_, err := svc.CreateTreatment(context.Background(), ports.CreateTreatmentInput{
		ClientID:          clientID,
		TreatmentMethodID: methodID,
		TreatmentDate:     date(t, "2025-06-01"),
	})
	if !errors.Is(err, domain.ErrInvalidBillingInput) {
		t.Fatalf("expected ErrInvalidBillingInput, got %v", err)
	}

	treatment, err := svc.CreateTreatment(context.Background(), ports.CreateTreatmentInput{
		ClientID:          clientID,
		TreatmentMethodID: methodID,
		TreatmentDate:     date(t, "2025-06-01"),
		DurationHours:     strPtr("1.5"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !treatment.DurationHours.Valid || treatment.DurationHours.Decimal.String() != "1.5" {
		t.Fatalf("duration not stored: %+v", treatment.DurationHours)
	}
}

func TestCreateTreatment_SessionRejectsDuration(t *testing.T) {
	svc, clients, methods := newTestTreatmentService(t)
	clientID := seedClient(t, clients)
	methodID := seedMethod(t, methods, domain.BillingSession)

	_, err := svc.CreateTreatment(context.Background(), ports.CreateTreatmentInput{
		ClientID:          clientID,
		TreatmentMethodID: methodID,
		TreatmentDate:     date(t, "2025-06-01"),
		DurationHours:     strPtr("1.0"),
	})
	if !errors.Is(err, domain.ErrInvalidBillingInput) {
		t.Fatalf("expected ErrInvalidBillingInput, got %v", err)
	}

	if _, err := svc.CreateTreatment(context.Background(), ports.CreateTreatmentInput{
		ClientID:          clientID,
		TreatmentMethodID: methodID,
		TreatmentDate:     date(t, "2025-06-01"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateTreatment_MalformedDuration(t *testing.T) {
	svc, clients, methods := newTestTreatmentService(t)
	clientID := seedClient(t, clients)
	methodID := seedMethod(t, methods, domain.BillingHourly)

	_, err := svc.CreateTreatment(context.Background(), ports.CreateTreatmentInput{
		ClientID:          clientID,
		TreatmentMethodID: methodID,
		TreatmentDate:     date(t, "2025-06-01"),
		DurationHours:     strPtr("two hours"),
	})
	if !errors.Is(err, domain.ErrInvalidBillingInput) {
		t.Fatalf("expected ErrInvalidBillingInput, got %v", err)
	}
}

func TestCreateTreatment_UnknownReferences(t *testing.T) {
	svc, clients, methods := newTestTreatmentService(t)
	clientID := seedClient(t, clients)
	methodID := seedMethod(t, methods, domain.BillingSession)

	if _, err := svc.CreateTreatment(context.Background(), ports.CreateTreatmentInput{
		ClientID:          999,
		TreatmentMethodID: methodID,
		TreatmentDate:     date(t, "2025-06-01"),
	}); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}

	if _, err := svc.CreateTreatment(context.Background(), ports.CreateTreatmentInput{
		ClientID:          clientID,
		TreatmentMethodID: 999,
		TreatmentDate:     date(t, "2025-06-01"),
	}); !errors.Is(err, domain.ErrTreatmentMethodNotFound) {
		t.Fatalf("expected ErrTreatmentMethodNotFound, got %v", err)
	}
}
