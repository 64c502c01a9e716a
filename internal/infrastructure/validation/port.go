// Package validation defines the cultural validation port and a reference
// threshold validator. Real validators are external collaborators; their
// failures degrade a result instead of failing the task.
package validation

import (
	"context"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Port is the cultural validation contract. Implementations check a
// produced decision against a cultural context.
type Port interface {
	Validate(ctx context.Context, decision shared.SwarmDecision, culturalContext string) (shared.ValidationReport, error)
}

// DegradedRecord builds the low-confidence record attached to a result
// when validation fails or errors.
func DegradedRecord(reason string) *shared.ValidationRecord {
	return &shared.ValidationRecord{
		ValidationReport: shared.ValidationReport{
			Passed:           false,
			Confidence:       0.1,
			CulturalAccuracy: 0,
			Feedback:         []string{reason},
			RiskLevel:        "unknown",
		},
		Degraded: true,
	}
}

// ThresholdValidator is the reference Port implementation: it passes any
// decision whose confidence meets the minimum and scores cultural accuracy
// from the decision confidence.
type ThresholdValidator struct {
	MinConfidence float64
}

// NewThresholdValidator creates a ThresholdValidator.
func NewThresholdValidator(minConfidence float64) *ThresholdValidator {
	return &ThresholdValidator{MinConfidence: minConfidence}
}

// Validate implements Port.
func (v *ThresholdValidator) Validate(ctx context.Context, decision shared.SwarmDecision, culturalContext string) (shared.ValidationReport, error) {
	select {
	case <-ctx.Done():
		return shared.ValidationReport{}, ctx.Err()
	default:
	}

	passed := decision.Confidence >= v.MinConfidence
	risk := "low"
	if !passed {
		risk = "medium"
	}

	report := shared.ValidationReport{
		Passed:           passed,
		Confidence:       decision.Confidence,
		CulturalAccuracy: decision.Confidence,
		RiskLevel:        risk,
	}
	if !passed {
		report.Improvements = []string{"increase participating agent agreement before publishing"}
	}
	return report, nil
}
