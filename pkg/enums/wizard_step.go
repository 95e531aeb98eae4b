package enums

import "fmt"

// WizardStep identifies a stage of the onboarding wizard. Steps are strictly
// ordered; transitions only move one step at a time.
type WizardStep string

const (
	WizardStepDevicePlan   WizardStep = "device_plan"
	WizardStepPersonalInfo WizardStep = "personal_info"
	WizardStepVerification WizardStep = "verification"
	WizardStepConfirmation WizardStep = "confirmation"
)

var orderedWizardSteps = []WizardStep{
	WizardStepDevicePlan,
	WizardStepPersonalInfo,
	WizardStepVerification,
	WizardStepConfirmation,
}

// String implements fmt.Stringer.
func (s WizardStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WizardStep.
func (s WizardStep) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the zero-based position of the step, or -1 when unknown.
func (s WizardStep) Index() int {
	for i, candidate := range orderedWizardSteps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Next returns the following step and false when already at the last step.
func (s WizardStep) Next() (WizardStep, bool) {
	idx := s.Index()
	if idx < 0 || idx >= len(orderedWizardSteps)-1 {
		return s, false
	}
	return orderedWizardSteps[idx+1], true
}

// Prev returns the preceding step and false when already at the first step.
func (s WizardStep) Prev() (WizardStep, bool) {
	idx := s.Index()
	if idx <= 0 {
		return s, false
	}
	return orderedWizardSteps[idx-1], true
}

// ParseWizardStep converts raw input into a WizardStep.
func ParseWizardStep(value string) (WizardStep, error) {
	for _, candidate := range orderedWizardSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wizard step %q", value)
}
