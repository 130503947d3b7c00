package tokenops

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Normalize converts an arbitrary upstream record into a canonical Operation.
// The second return value is false when the record is not a mint/burn row at
// all; that is never an error, the record is simply skipped by callers.
//
// Shape detection is by discriminator: an audit-union row carries
// type=mint-burn plus an action, an op-table row carries op_type directly.
// Discriminators are compared case-insensitively with "-" and "_" treated as
// equal, since the two upstreams disagree on spelling.
func Normalize(raw RawEvent) (Operation, bool) {
	if raw == nil {
		return Operation{}, false
	}

	if canon(str(raw["type"])) == "MINT_BURN" {
		kind, ok := opKind(str(raw["action"]))
		if !ok {
			return Operation{}, false
		}
		detail, _ := raw["detail"].(map[string]any)
		return Operation{
			Kind:       kind,
			Grams:      firstGrams(detail["grams"], raw["grams"]),
			Operator:   firstStr(raw["operator"], raw["wallet_address"]),
			TxRef:      firstStr(detail["tx_hash"], raw["tx_hash"]),
			OccurredAt: eventTime(raw),
		}, true
	}

	kind, ok := opKind(str(raw["op_type"]))
	if !ok {
		return Operation{}, false
	}
	detail, _ := raw["detail"].(map[string]any)
	return Operation{
		Kind:       kind,
		Grams:      firstGrams(raw["grams"], detail["grams"]),
		Operator:   firstStr(raw["wallet_address"], raw["operator"]),
		TxRef:      firstStr(raw["tx_hash"], detail["tx_hash"]),
		OccurredAt: eventTime(raw),
	}, true
}

// canon uppercases and folds "-" to "_" so BUY_MINT and buy-mint compare equal.
func canon(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
}

func opKind(s string) (Kind, bool) {
	switch canon(s) {
	case string(KindMint):
		return KindMint, true
	case string(KindBurn):
		return KindBurn, true
	}
	return "", false
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func firstStr(vs ...any) string {
	for _, v := range vs {
		if s := strings.TrimSpace(str(v)); s != "" {
			return s
		}
	}
	return ""
}

// firstGrams returns the first numeric candidate, clamped to zero when
// negative. Non-numeric candidates are skipped; no candidate means zero.
func firstGrams(vs ...any) decimal.Decimal {
	for _, v := range vs {
		d, ok := numeric(v)
		if !ok {
			continue
		}
		if d.IsNegative() {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

func numeric(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case decimal.Decimal:
		return n, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

// eventTime reads created_at (or createdAt) as RFC3339 or epoch seconds.
// Unparseable timestamps yield the zero time rather than an error.
func eventTime(raw RawEvent) time.Time {
	v, ok := raw["created_at"]
	if !ok {
		v = raw["createdAt"]
	}
	switch ts := v.(type) {
	case time.Time:
		return ts
	case float64:
		return time.Unix(int64(ts), 0).UTC()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, ts); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
