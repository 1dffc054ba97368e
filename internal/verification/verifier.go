// Package verification checks the registry's structural invariants
// before it is published: unique identity keys, valid categories, sane
// dates and prices. Violations are reported, never repaired.
package verification

import (
	"fmt"
	"time"

	"influencer-stock-lab/internal/domain"
)

// Violation is one invariant breach in a registry entry.
type Violation struct {
	Key   domain.Key
	Field string
	Issue string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s %s", v.Key, v.Field, v.Issue)
}

// Report collects the violations of one verification pass.
type Report struct {
	Entries    int
	Violations []Violation
}

// OK reports whether the registry passed every check.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// VerifyRegistry checks every entry against the registry invariants.
func VerifyRegistry(entries []domain.StockEntry) *Report {
	report := &Report{Entries: len(entries)}
	seen := make(map[domain.Key]struct{}, len(entries))

	for i := range entries {
		e := &entries[i]
		key := e.Key()

		if !key.IsValid() {
			report.add(key, "ticker", "is empty")
			continue
		}
		if _, dup := seen[key]; dup {
			report.add(key, "key", "is duplicated")
		}
		seen[key] = struct{}{}

		if !e.Category.IsValid() {
			report.add(key, "category", fmt.Sprintf("%q is not Growth or Dividend", e.Category))
		}
		if e.Price < 0 {
			report.add(key, "price", "is negative")
		}
		if e.InitialPrice != nil && *e.InitialPrice <= 0 {
			report.add(key, "initialPrice", "is set but not positive")
		}
		if e.RecommendedDate != "" && !validDate(e.RecommendedDate) {
			report.add(key, "recommendedDate", fmt.Sprintf("%q is not YYYY-MM-DD", e.RecommendedDate))
		}
		if e.LastUpdated != "" && !validDate(e.LastUpdated) {
			report.add(key, "lastUpdated", fmt.Sprintf("%q is not YYYY-MM-DD", e.LastUpdated))
		}

		scores := []struct {
			field string
			value int
		}{
			{"fcfQuality", e.FCFQuality},
			{"roicStrength", e.ROICStrength},
			{"revenueDurability", e.RevenueDurable},
			{"balanceSheetStrength", e.BalanceSheet},
			{"insiderActivity", e.InsiderActivity},
			{"valueRank", e.ValueRank},
			{"expectedReturn", e.ExpectedReturn},
		}
		for _, s := range scores {
			if s.value < 1 || s.value > 5 {
				report.add(key, s.field, fmt.Sprintf("%d is outside [1,5]", s.value))
			}
		}
	}

	return report
}

func (r *Report) add(key domain.Key, field, issue string) {
	r.Violations = append(r.Violations, Violation{Key: key, Field: field, Issue: issue})
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
