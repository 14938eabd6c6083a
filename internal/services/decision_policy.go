package services

import "github.com/you/faceauthsvc/domain"

// DecisionPolicy maps a similarity distance to the tri-state decision under
// two configured thresholds (samePerson < stepUp). It is only consulted for
// verdicts that are both matched and live; a non-live verdict never reaches
// it.
type DecisionPolicy struct {
	samePerson float64
	stepUp     float64
}

// NewDecisionPolicy creates a policy from the configured thresholds.
func NewDecisionPolicy(samePerson, stepUp float64) *DecisionPolicy {
	return &DecisionPolicy{samePerson: samePerson, stepUp: stepUp}
}

// Decide returns the decision for a distance (lower = more alike).
func (p *DecisionPolicy) Decide(distance float64) domain.Decision {
	switch {
	case distance < p.samePerson:
		return domain.DecisionLoginSuccess
	case distance <= p.stepUp:
		return domain.DecisionRequireStepUp
	default:
		return domain.DecisionDeny
	}
}
