package core

// PatientStatus is the lifecycle status of a patient.
type PatientStatus string

// All statuses a patient can be in.
const (
	PatientStatusRegistered PatientStatus = "REGISTERED"
	PatientStatusScreening  PatientStatus = "SCREENING"
	PatientStatusEnrolled   PatientStatus = "ENROLLED"
	PatientStatusActive     PatientStatus = "ACTIVE"
	PatientStatusCompleted  PatientStatus = "COMPLETED"
	PatientStatusWithdrawn  PatientStatus = "WITHDRAWN"
)

// patientTransitions is the complete transition graph. Withdrawal is reachable
// from every non-terminal status and always requires a reason.
var patientTransitions = map[PatientStatus][]PatientStatus{
	PatientStatusRegistered: {PatientStatusScreening, PatientStatusWithdrawn},
	PatientStatusScreening:  {PatientStatusEnrolled, PatientStatusWithdrawn},
	PatientStatusEnrolled:   {PatientStatusActive, PatientStatusWithdrawn},
	PatientStatusActive:     {PatientStatusCompleted, PatientStatusWithdrawn},
	PatientStatusCompleted:  {},
	PatientStatusWithdrawn:  {},
}

// IsValid reports whether the status is part of the patient lifecycle.
func (s PatientStatus) IsValid() bool {
	_, known := patientTransitions[s]
	return known
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s PatientStatus) IsTerminal() bool {
	return s.IsValid() && len(patientTransitions[s]) == 0
}

// CanTransitionTo reports whether moving to target is a legal transition.
func (s PatientStatus) CanTransitionTo(target PatientStatus) bool {
	for _, next := range patientTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// ValidNext returns the legal target statuses as strings for error reporting.
func (s PatientStatus) ValidNext() []string {
	next := make([]string, 0, len(patientTransitions[s]))
	for _, target := range patientTransitions[s] {
		next = append(next, string(target))
	}

	return next
}

// RequiresReason reports whether entering this status needs a documented reason.
func (s PatientStatus) RequiresReason() bool {
	return s == PatientStatusWithdrawn
}

func (s PatientStatus) String() string {
	return string(s)
}
