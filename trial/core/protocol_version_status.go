package core

// ProtocolVersionStatus is the lifecycle status of a protocol version.
type ProtocolVersionStatus string

// All statuses a protocol version can be in.
const (
	ProtocolVersionStatusDraft       ProtocolVersionStatus = "DRAFT"
	ProtocolVersionStatusUnderReview ProtocolVersionStatus = "UNDER_REVIEW"
	ProtocolVersionStatusSubmitted   ProtocolVersionStatus = "SUBMITTED"
	ProtocolVersionStatusApproved    ProtocolVersionStatus = "APPROVED"
	ProtocolVersionStatusActive      ProtocolVersionStatus = "ACTIVE"
	ProtocolVersionStatusSuperseded  ProtocolVersionStatus = "SUPERSEDED"
	ProtocolVersionStatusWithdrawn   ProtocolVersionStatus = "WITHDRAWN"
)

// protocolVersionTransitions is the complete transition graph. An ACTIVE
// version cannot be withdrawn, only superseded by the next active version.
var protocolVersionTransitions = map[ProtocolVersionStatus][]ProtocolVersionStatus{
	ProtocolVersionStatusDraft:       {ProtocolVersionStatusUnderReview, ProtocolVersionStatusSubmitted, ProtocolVersionStatusWithdrawn},
	ProtocolVersionStatusUnderReview: {ProtocolVersionStatusDraft, ProtocolVersionStatusSubmitted, ProtocolVersionStatusWithdrawn},
	ProtocolVersionStatusSubmitted:   {ProtocolVersionStatusApproved, ProtocolVersionStatusUnderReview, ProtocolVersionStatusWithdrawn},
	ProtocolVersionStatusApproved:    {ProtocolVersionStatusActive, ProtocolVersionStatusWithdrawn},
	ProtocolVersionStatusActive:      {ProtocolVersionStatusSuperseded},
	ProtocolVersionStatusSuperseded:  {},
	ProtocolVersionStatusWithdrawn:   {},
}

// IsValid reports whether the status is part of the protocol version lifecycle.
func (s ProtocolVersionStatus) IsValid() bool {
	_, known := protocolVersionTransitions[s]
	return known
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s ProtocolVersionStatus) IsTerminal() bool {
	return s.IsValid() && len(protocolVersionTransitions[s]) == 0
}

// CanTransitionTo reports whether moving to target is a legal transition.
func (s ProtocolVersionStatus) CanTransitionTo(target ProtocolVersionStatus) bool {
	for _, next := range protocolVersionTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// ValidNext returns the legal target statuses as strings for error reporting.
func (s ProtocolVersionStatus) ValidNext() []string {
	next := make([]string, 0, len(protocolVersionTransitions[s]))
	for _, target := range protocolVersionTransitions[s] {
		next = append(next, string(target))
	}

	return next
}

func (s ProtocolVersionStatus) String() string {
	return string(s)
}
