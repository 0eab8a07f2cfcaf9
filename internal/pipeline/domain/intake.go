package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Unassigned returns the inquiries no opportunity references yet, newest
// first. It relies on the invariant that an inquiry produces at most one
// opportunity. Empty inputs yield an empty result.
func Unassigned(inquiries []Inquiry, opportunities []Opportunity) []Inquiry {
	pipelined := make(map[uuid.UUID]struct{}, len(opportunities))
	for _, opp := range opportunities {
		pipelined[opp.InquiryID] = struct{}{}
	}

	result := make([]Inquiry, 0, len(inquiries))
	for _, inq := range inquiries {
		if _, ok := pipelined[inq.ID]; !ok {
			result = append(result, inq)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// FilterHot keeps inquiries created within the window or explicitly
// asking for a quote. The input slice is not modified.
func FilterHot(inquiries []Inquiry, now time.Time, window time.Duration) []Inquiry {
	result := make([]Inquiry, 0, len(inquiries))
	for _, inq := range inquiries {
		if now.Sub(inq.CreatedAt) <= window || inq.Purpose == PurposeQuoteRequest {
			result = append(result, inq)
		}
	}
	return result
}

// FilterReferral keeps inquiries whose source equals the referral tag.
// The input slice is not modified.
func FilterReferral(inquiries []Inquiry, referralTag string) []Inquiry {
	result := make([]Inquiry, 0, len(inquiries))
	for _, inq := range inquiries {
		if inq.Source == referralTag {
			result = append(result, inq)
		}
	}
	return result
}

// DuplicatePromotions returns the inquiry ids referenced by more than one
// opportunity. A non-empty result means the one-opportunity-per-inquiry
// invariant was violated upstream; the engine reports but does not
// auto-correct this.
func DuplicatePromotions(opportunities []Opportunity) []uuid.UUID {
	seen := make(map[uuid.UUID]int, len(opportunities))
	for _, opp := range opportunities {
		seen[opp.InquiryID]++
	}

	var duplicates []uuid.UUID
	for _, opp := range opportunities {
		if seen[opp.InquiryID] > 1 {
			duplicates = append(duplicates, opp.InquiryID)
			seen[opp.InquiryID] = 0 // report each inquiry once
		}
	}
	return duplicates
}
