package core

// SiteStatus is the lifecycle status of a clinical site.
type SiteStatus string

// All statuses a site can be in.
const (
	SiteStatusPending   SiteStatus = "PENDING"
	SiteStatusActive    SiteStatus = "ACTIVE"
	SiteStatusInactive  SiteStatus = "INACTIVE"
	SiteStatusSuspended SiteStatus = "SUSPENDED"
)

var siteTransitions = map[SiteStatus][]SiteStatus{
	SiteStatusPending:   {SiteStatusActive},
	SiteStatusActive:    {SiteStatusInactive, SiteStatusSuspended},
	SiteStatusSuspended: {SiteStatusActive},
	SiteStatusInactive:  {},
}

// IsValid reports whether the status is part of the site lifecycle.
func (s SiteStatus) IsValid() bool {
	_, known := siteTransitions[s]
	return known
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s SiteStatus) IsTerminal() bool {
	return s.IsValid() && len(siteTransitions[s]) == 0
}

// CanTransitionTo reports whether moving to target is a legal transition.
func (s SiteStatus) CanTransitionTo(target SiteStatus) bool {
	for _, next := range siteTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// ValidNext returns the legal target statuses as strings for error reporting.
func (s SiteStatus) ValidNext() []string {
	next := make([]string, 0, len(siteTransitions[s]))
	for _, target := range siteTransitions[s] {
		next = append(next, string(target))
	}

	return next
}

// AcceptsUserAssignments reports whether users may be assigned to a site in
// this status. Inactive and suspended sites reject assignments.
func (s SiteStatus) AcceptsUserAssignments() bool {
	switch s {
	case SiteStatusInactive, SiteStatusSuspended:
		return false
	default:
		return s.IsValid()
	}
}

func (s SiteStatus) String() string {
	return string(s)
}
