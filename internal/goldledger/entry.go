package goldledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one physical intake record. Entries are immutable once created and
// never deleted; corrections are new entries.
type Entry struct {
	ID        int64           `json:"id"`
	EntryDate time.Time       `json:"entry_date"`
	IntakeG   decimal.Decimal `json:"intake_g"`
	PurityBP  int             `json:"purity_bp"`
	Source    string          `json:"source"`
	Serial    string          `json:"serial"`
	Batch     string          `json:"batch"`
	Storage   string          `json:"storage"`
	Custody   string          `json:"custody"`
	Insurance string          `json:"insurance"`
	AuditRef  string          `json:"audit_ref"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"created_at"`
}
