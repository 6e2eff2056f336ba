package enums

import "fmt"

// RequestStatus tracks the lifecycle of a buddy request. Accepted and
// rejected are terminal; no transition leaves either state.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusAccepted,
	RequestStatusRejected,
}

// IsValid checks whether the given status matches the canonical enum.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is defined for the status.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusAccepted || s == RequestStatusRejected
}

// RequestDecision is the closed set of receiver responses to a pending
// request. Anything outside accepted/rejected is rejected at the boundary.
type RequestDecision string

const (
	RequestDecisionAccepted RequestDecision = "accepted"
	RequestDecisionRejected RequestDecision = "rejected"
)

// IsValid checks whether the decision is one of the two terminal outcomes.
func (d RequestDecision) IsValid() bool {
	return d == RequestDecisionAccepted || d == RequestDecisionRejected
}

// ParseRequestDecision converts raw strings into RequestDecision.
func ParseRequestDecision(value string) (RequestDecision, error) {
	switch RequestDecision(value) {
	case RequestDecisionAccepted:
		return RequestDecisionAccepted, nil
	case RequestDecisionRejected:
		return RequestDecisionRejected, nil
	}
	return "", fmt.Errorf("invalid request decision %q", value)
}

// Status maps the decision onto the terminal request status it produces.
func (d RequestDecision) Status() RequestStatus {
	if d == RequestDecisionAccepted {
		return RequestStatusAccepted
	}
	return RequestStatusRejected
}
