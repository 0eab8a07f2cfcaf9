// Package domain holds the insight review model: AI-surfaced account
// findings and their independent review lifecycle.
package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FindingType classifies what kind of insight an analysis surfaced.
type FindingType string

const (
	TypeGap       FindingType = "gap"
	TypeUpsell    FindingType = "upsell"
	TypeCrossSell FindingType = "cross_sell"
)

// FindingStatus is the review state of a finding. Every finding starts
// at pending review and moves to verified or rejected exactly once per
// reviewer decision; setting the same status again changes nothing.
type FindingStatus string

const (
	StatusPendingReview FindingStatus = "pending_review"
	StatusVerified      FindingStatus = "verified"
	StatusRejected      FindingStatus = "rejected"
)

// IsReviewOutcome reports whether the status is a valid reviewer decision.
func (s FindingStatus) IsReviewOutcome() bool {
	return s == StatusVerified || s == StatusRejected
}

// Finding is one AI-surfaced account insight under review. Gap findings
// are informational; only upsell and cross-sell findings count toward
// verified opportunity totals.
type Finding struct {
	ID             uuid.UUID     `json:"id"`
	AgencyID       uuid.UUID     `json:"agencyId"`
	CustomerID     uuid.UUID     `json:"customerId"`
	AnalysisID     string        `json:"analysisId"`
	Type           FindingType   `json:"type"`
	Status         FindingStatus `json:"status"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Benefit        string        `json:"benefit,omitempty"`
	Priority       string        `json:"priority,omitempty"`
	ImpactText     string        `json:"impactText,omitempty"`
	EstimatedValue float64       `json:"estimatedValue"`
	SalesScript    string        `json:"salesScript,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

var numericRun = regexp.MustCompile(`[0-9][0-9.,]*`)

// ParseEstimatedValue extracts a numeric value from a currency-like cost
// string such as "€200/year" or "$1,250". The first run of digits with
// separators is taken, thousands separators are stripped, and the rest
// parses as a decimal. No match yields 0.
func ParseEstimatedValue(cost string) float64 {
	match := numericRun.FindString(cost)
	if match == "" {
		return 0
	}
	match = strings.ReplaceAll(match, ",", "")
	match = strings.TrimRight(match, ".")
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

// VerifiedOpportunityCounts tallies verified upsell and cross-sell
// findings. Gap findings are excluded.
type VerifiedOpportunityCounts struct {
	Upsell    int `json:"upsell"`
	CrossSell int `json:"crossSell"`
}

// CountVerifiedOpportunities derives the verified opportunity tally from
// a findings collection.
func CountVerifiedOpportunities(findings []Finding) VerifiedOpportunityCounts {
	var counts VerifiedOpportunityCounts
	for _, f := range findings {
		if f.Status != StatusVerified {
			continue
		}
		switch f.Type {
		case TypeUpsell:
			counts.Upsell++
		case TypeCrossSell:
			counts.CrossSell++
		}
	}
	return counts
}
