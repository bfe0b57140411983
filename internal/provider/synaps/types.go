package synaps

// Wire shapes for the Synaps individual onboarding API. These never leave this
// package; the reduction to provider.SessionState happens in provider.go.

type sessionStatus string

const (
	sessionPending   sessionStatus = "PENDING"
	sessionVerified  sessionStatus = "VERIFIED"
	sessionCancelled sessionStatus = "CANCELLED"
)

type stepState string

const (
	stateValidated  stepState = "VALIDATED"
	stateNotStarted stepState = "NOT_STARTED"
	statePending    stepState = "PENDING"
	stateRejected   stepState = "REJECTED"
)

// terminal reports whether a step state can no longer change.
func (s stepState) terminal() bool {
	return s == stateValidated || s == stateRejected
}

type onboardingDetails struct {
	AppID     string                     `json:"app_id"`
	Sandbox   bool                       `json:"sandbox"`
	SessionID string                     `json:"session_id"`
	Alias     string                     `json:"alias"`
	Session   sessionDetails             `json:"session"`
	Steps     map[string]verificationStep `json:"steps"`
}

type sessionDetails struct {
	SessionID string        `json:"session_id"`
	Status    sessionStatus `json:"status"`
	Sandbox   bool          `json:"sandbox"`
	Alias     string        `json:"alias"`
}

type verificationStep struct {
	Type         string                `json:"type"`
	Verification verificationDetails   `json:"verification"`
}

// verificationDetails is the union of the LIVENESS and IDENTITY step payloads.
// LIVENESS sets State; IDENTITY sets the three sub-checks.
type verificationDetails struct {
	State stepState `json:"state,omitempty"`

	Document  *documentCheck  `json:"document,omitempty"`
	Duplicate *duplicateCheck `json:"duplicate,omitempty"`
	Facematch *facematchCheck `json:"facematch,omitempty"`
}

type documentCheck struct {
	State     stepState `json:"state"`
	Rejection struct {
		ReasonCode     string `json:"reason_code"`
		CustomerReason string `json:"customer_reason"`
		UserReason     string `json:"user_reason"`
	} `json:"rejection"`
}

type duplicateCheck struct {
	State     stepState `json:"state"`
	SessionID string    `json:"session_id,omitempty"`
	Alias     string    `json:"alias,omitempty"`
}

type facematchCheck struct {
	State stepState `json:"state"`
}

type webhookPayload struct {
	SessionID string `json:"session_id"`
}

const (
	stepTypeLiveness = "LIVENESS"
	stepTypeIdentity = "IDENTITY"
)
