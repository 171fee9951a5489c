package core

// StudyStatus is the lifecycle status of a study.
type StudyStatus string

// All statuses a study can be in.
const (
	StudyStatusPlanning             StudyStatus = "PLANNING"
	StudyStatusRegulatorySubmission StudyStatus = "REGULATORY_SUBMISSION"
	StudyStatusIRBReview            StudyStatus = "IRB_REVIEW"
	StudyStatusApproved             StudyStatus = "APPROVED"
	StudyStatusActive               StudyStatus = "ACTIVE"
	StudyStatusSuspended            StudyStatus = "SUSPENDED"
	StudyStatusCompleted            StudyStatus = "COMPLETED"
	StudyStatusTerminated           StudyStatus = "TERMINATED"
	StudyStatusWithdrawn            StudyStatus = "WITHDRAWN"
)

// studyTransitions is the complete transition graph. A status maps to the
// statuses it may move to; terminal statuses map to an empty slice.
// Self-transitions are invalid by omission.
var studyTransitions = map[StudyStatus][]StudyStatus{
	StudyStatusPlanning:             {StudyStatusRegulatorySubmission, StudyStatusIRBReview, StudyStatusWithdrawn},
	StudyStatusRegulatorySubmission: {StudyStatusIRBReview, StudyStatusApproved, StudyStatusWithdrawn},
	StudyStatusIRBReview:            {StudyStatusRegulatorySubmission, StudyStatusApproved, StudyStatusWithdrawn},
	StudyStatusApproved:             {StudyStatusActive, StudyStatusWithdrawn},
	StudyStatusActive:               {StudyStatusSuspended, StudyStatusCompleted, StudyStatusTerminated},
	StudyStatusSuspended:            {StudyStatusActive, StudyStatusTerminated},
	StudyStatusCompleted:            {},
	StudyStatusTerminated:           {},
	StudyStatusWithdrawn:            {},
}

// IsValid reports whether the status is part of the study lifecycle.
func (s StudyStatus) IsValid() bool {
	_, known := studyTransitions[s]
	return known
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s StudyStatus) IsTerminal() bool {
	return s.IsValid() && len(studyTransitions[s]) == 0
}

// CanTransitionTo reports whether moving to target is a legal transition.
func (s StudyStatus) CanTransitionTo(target StudyStatus) bool {
	for _, next := range studyTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// ValidNext returns the legal target statuses as strings for error reporting.
func (s StudyStatus) ValidNext() []string {
	next := make([]string, 0, len(studyTransitions[s]))
	for _, target := range studyTransitions[s] {
		next = append(next, string(target))
	}

	return next
}

// RequiresReason reports whether entering this status needs a documented reason.
func (s StudyStatus) RequiresReason() bool {
	switch s {
	case StudyStatusSuspended, StudyStatusTerminated, StudyStatusWithdrawn:
		return true
	default:
		return false
	}
}

// LocksStudy reports whether this status freezes the study against detail updates.
func (s StudyStatus) LocksStudy() bool {
	switch s {
	case StudyStatusCompleted, StudyStatusTerminated, StudyStatusWithdrawn:
		return true
	default:
		return false
	}
}

func (s StudyStatus) String() string {
	return string(s)
}
