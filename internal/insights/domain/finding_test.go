package domain

import "testing"

func TestParseEstimatedValue(t *testing.T) {
	tests := []struct {
		cost string
		want float64
	}{
		{"€200/year", 200},
		{"$1,250", 1250},
		{"€ 49.95 per maand", 49.95},
		{"ongeveer €1,200.50", 1200.50},
		{"", 0},
		{"geen kosten bekend", 0},
		{"200", 200},
	}

	for _, tc := range tests {
		if got := ParseEstimatedValue(tc.cost); got != tc.want {
			t.Errorf("ParseEstimatedValue(%q) = %v, want %v", tc.cost, got, tc.want)
		}
	}
}

func TestCountVerifiedOpportunitiesExcludesGaps(t *testing.T) {
	findings := []Finding{
		{Type: TypeGap, Status: StatusVerified},
		{Type: TypeUpsell, Status: StatusVerified},
		{Type: TypeUpsell, Status: StatusPendingReview},
		{Type: TypeCrossSell, Status: StatusVerified},
		{Type: TypeCrossSell, Status: StatusRejected},
	}

	counts := CountVerifiedOpportunities(findings)
	if counts.Upsell != 1 {
		t.Errorf("upsell count = %d, want 1", counts.Upsell)
	}
	if counts.CrossSell != 1 {
		t.Errorf("cross-sell count = %d, want 1", counts.CrossSell)
	}

	if counts := CountVerifiedOpportunities(nil); counts.Upsell != 0 || counts.CrossSell != 0 {
		t.Errorf("empty collection must count zero, got %+v", counts)
	}
}

func TestIsReviewOutcome(t *testing.T) {
	for status, want := range map[FindingStatus]bool{
		StatusVerified:      true,
		StatusRejected:      true,
		StatusPendingReview: false,
		FindingStatus("x"):  false,
	} {
		if got := status.IsReviewOutcome(); got != want {
			t.Errorf("%q.IsReviewOutcome() = %v, want %v", status, got, want)
		}
	}
}
