package domain

// WizardStep is one state of the onboarding wizard. The order below is fixed:
// no step may be entered before its predecessor has succeeded, while backward
// navigation is unrestricted.
type WizardStep string

const (
	StepSetPassword    WizardStep = "set_password"
	StepLinkedInImport WizardStep = "linkedin_import"
	StepReviewDetails  WizardStep = "review_details"
	StepUploadPhoto    WizardStep = "upload_photo"
	StepAvailability   WizardStep = "availability"
	StepComplete       WizardStep = "complete"
)

var stepOrder = []WizardStep{
	StepSetPassword,
	StepLinkedInImport,
	StepReviewDetails,
	StepUploadPhoto,
	StepAvailability,
	StepComplete,
}

// Steps returns the ordered step list.
func Steps() []WizardStep {
	return append([]WizardStep(nil), stepOrder...)
}

// TotalSteps is the number of wizard steps, for progress display.
const TotalSteps = 6

// Valid reports whether s names a known wizard step.
func (s WizardStep) Valid() bool {
	return s.Index() > 0
}

// Index returns the 1-based position of s in the wizard, or 0 for unknown steps.
func (s WizardStep) Index() int {
	for i, st := range stepOrder {
		if st == s {
			return i + 1
		}
	}
	return 0
}

// Successor returns the step after s. ok is false for StepComplete (terminal)
// and for unknown steps.
func (s WizardStep) Successor() (WizardStep, bool) {
	i := s.Index()
	if i == 0 || i >= len(stepOrder) {
		return "", false
	}
	return stepOrder[i], true
}

// Predecessor returns the step before s. ok is false for StepSetPassword
// (backward navigation stops there) and for unknown steps.
func (s WizardStep) Predecessor() (WizardStep, bool) {
	i := s.Index()
	if i <= 1 {
		return "", false
	}
	return stepOrder[i-2], true
}
