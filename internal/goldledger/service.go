package goldledger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/oureum/reserve/internal/domain"
)

// RegisterRequest carries the fields of a new intake registration.
type RegisterRequest struct {
	EntryDate string `json:"entry_date" validate:"omitempty,datetime=2006-01-02"`
	IntakeG   string `json:"intake_g" validate:"required"`
	PurityBP  int    `json:"purity_bp" validate:"gte=0,lte=10000"`
	Source    string `json:"source"`
	Serial    string `json:"serial"`
	Batch     string `json:"batch"`
	Storage   string `json:"storage"`
	Custody   string `json:"custody"`
	Insurance string `json:"insurance"`
	AuditRef  string `json:"audit_ref"`
	Note      string `json:"note"`
}

// Service validates and registers intake entries and lists the ledger.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService creates a new gold ledger service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
	}
}

// Register validates the request and appends a new intake entry.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Entry, error) {
	if err := s.validate.Struct(req); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	intake, err := decimal.NewFromString(req.IntakeG)
	if err != nil || intake.IsNegative() {
		return Entry{}, fmt.Errorf("%w: intake_g must be a non-negative amount", domain.ErrInvalidRequest)
	}

	entryDate := time.Now().UTC()
	if req.EntryDate != "" {
		entryDate, err = time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: invalid entry_date", domain.ErrInvalidRequest)
		}
	}

	return s.repo.Insert(ctx, Entry{
		EntryDate: entryDate,
		IntakeG:   intake,
		PurityBP:  req.PurityBP,
		Source:    req.Source,
		Serial:    req.Serial,
		Batch:     req.Batch,
		Storage:   req.Storage,
		Custody:   req.Custody,
		Insurance: req.Insurance,
		AuditRef:  req.AuditRef,
		Note:      req.Note,
	})
}

// List returns recent intake entries, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.List(ctx, limit)
}
