package goldledger

import (
	"context"
	"errors"
	"testing"

	"github.com/oureum/reserve/internal/domain"
)

type mockRepo struct {
	inserted []Entry
	list     []Entry
	listErr  error
}

func (m *mockRepo) Insert(_ context.Context, e Entry) (Entry, error) {
	e.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, e)
	return e, nil
}

func (m *mockRepo) List(_ context.Context, _ int) ([]Entry, error) {
	return m.list, m.listErr
}

func TestRegister(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	e, err := svc.Register(context.Background(), RegisterRequest{
		EntryDate: "2026-02-10",
		IntakeG:   "100.5",
		PurityBP:  9999,
		Source:    "refinery-a",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != 1 {
		t.Errorf("ID = %d, want 1", e.ID)
	}
	if e.IntakeG.String() != "100.5" {
		t.Errorf("IntakeG = %s, want 100.5", e.IntakeG)
	}
	if e.EntryDate.Format("2006-01-02") != "2026-02-10" {
		t.Errorf("EntryDate = %v", e.EntryDate)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := NewService(&mockRepo{})

	cases := []RegisterRequest{
		{IntakeG: "-5", PurityBP: 9000},
		{IntakeG: "abc", PurityBP: 9000},
		{IntakeG: "10", PurityBP: 10001},
		{IntakeG: "10", PurityBP: -1},
		{IntakeG: "10", PurityBP: 9000, EntryDate: "10/02/2026"},
	}
	for i, req := range cases {
		if _, err := svc.Register(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("case %d: err = %v, want ErrInvalidRequest", i, err)
		}
	}
}

func TestRegisterRejectedNothingInserted(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	_, _ = svc.Register(context.Background(), RegisterRequest{IntakeG: "-1"})
	if len(repo.inserted) != 0 {
		t.Errorf("inserted %d entries, want 0", len(repo.inserted))
	}
}
