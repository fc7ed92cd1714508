package procurement

import (
	"fmt"
	"slices"
	"strings"

	"github.com/farmerp/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a purchase order
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusApproved  Status = "APPROVED"
	StatusSent      Status = "SENT"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
	StatusPending   Status = "PENDING"
	StatusRejected  Status = "REJECTED"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ParseStatus normalizes a user-supplied status name
func ParseStatus(s string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(s)))
}

// SchemeName identifies a status scheme configuration
type SchemeName string

const (
	SchemeFiveState  SchemeName = "five_state"
	SchemeThreeState SchemeName = "three_state"
)

// StatusScheme is a named state machine configuration: an initial status,
// an allowed-next table, and the statuses that carry side effects.
// Terminal statuses are those with no allowed next status.
type StatusScheme struct {
	name         SchemeName
	initial      Status
	approval     Status
	cancellation []Status
	transitions  map[Status][]Status
}

// Name returns the scheme name
func (s *StatusScheme) Name() SchemeName {
	return s.name
}

// Initial returns the status new orders start in
func (s *StatusScheme) Initial() Status {
	return s.initial
}

// ApprovalStatus returns the status whose entry materializes the payment schedule
func (s *StatusScheme) ApprovalStatus() Status {
	return s.approval
}

// Contains reports whether status belongs to the scheme
func (s *StatusScheme) Contains(status Status) bool {
	_, ok := s.transitions[status]
	return ok
}

// AllowedNext returns the statuses reachable from status in one step
func (s *StatusScheme) AllowedNext(status Status) []Status {
	return slices.Clone(s.transitions[status])
}

// CanTransition checks if from can move to to
func (s *StatusScheme) CanTransition(from, to Status) bool {
	return slices.Contains(s.transitions[from], to)
}

// IsInitial reports whether status is the scheme's initial status
func (s *StatusScheme) IsInitial(status Status) bool {
	return status == s.initial
}

// IsTerminal reports whether no transition leaves status
func (s *StatusScheme) IsTerminal(status Status) bool {
	return s.Contains(status) && len(s.transitions[status]) == 0
}

// IsCancellation reports whether entering status soft-ends the order's obligations
func (s *StatusScheme) IsCancellation(status Status) bool {
	return slices.Contains(s.cancellation, status)
}

// Statuses returns every status of the scheme, initial first
func (s *StatusScheme) Statuses() []Status {
	out := []Status{s.initial}
	for st := range s.transitions {
		if st != s.initial {
			out = append(out, st)
		}
	}
	slices.Sort(out[1:])
	return out
}

var (
	// FiveStateScheme: DRAFT -> APPROVED -> SENT -> RECEIVED, cancellable until the end
	FiveStateScheme = &StatusScheme{
		name:         SchemeFiveState,
		initial:      StatusDraft,
		approval:     StatusApproved,
		cancellation: []Status{StatusCancelled},
		transitions: map[Status][]Status{
			StatusDraft:     {StatusApproved, StatusCancelled},
			StatusApproved:  {StatusSent, StatusCancelled},
			StatusSent:      {StatusReceived, StatusCancelled},
			StatusReceived:  {StatusCancelled},
			StatusCancelled: {},
		},
	}

	// ThreeStateScheme: PENDING is resolved once, to APPROVED or REJECTED
	ThreeStateScheme = &StatusScheme{
		name:         SchemeThreeState,
		initial:      StatusPending,
		approval:     StatusApproved,
		cancellation: []Status{StatusRejected},
		transitions: map[Status][]Status{
			StatusPending:  {StatusApproved, StatusRejected},
			StatusApproved: {},
			StatusRejected: {},
		},
	}
)

// LookupScheme returns the scheme registered under name
func LookupScheme(name SchemeName) (*StatusScheme, error) {
	switch name {
	case SchemeFiveState:
		return FiveStateScheme, nil
	case SchemeThreeState:
		return ThreeStateScheme, nil
	}
	return nil, shared.NewDomainError("INVALID_STATUS_SCHEME", fmt.Sprintf("Unknown status scheme: %s", name))
}

// StatusChange records a successful transition
type StatusChange struct {
	From Status `json:"from"`
	To   Status `json:"to"`
}

// ErrInvalidTransition matches any InvalidTransitionError through errors.Is
var ErrInvalidTransition = shared.NewDomainError(shared.CodeInvalidTransition, "Status transition not allowed")

// ErrEditNotAllowed matches any EditNotAllowedError through errors.Is
var ErrEditNotAllowed = shared.NewDomainError(shared.CodeEditNotAllowed, "Purchase order can no longer be modified")

// InvalidTransitionError is returned when the requested status is not in the
// allowed-next set of the current status.
type InvalidTransitionError struct {
	Current   Status
	Requested Status
	Allowed   []Status
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot transition purchase order from %s to %s: %s is terminal", e.Current, e.Requested, e.Current)
	}
	return fmt.Sprintf("cannot transition purchase order from %s to %s, allowed: %s", e.Current, e.Requested, joinStatuses(e.Allowed))
}

// Unwrap exposes the error as a DomainError with structured details
func (e *InvalidTransitionError) Unwrap() error {
	return shared.NewDomainError(shared.CodeInvalidTransition, e.Error()).
		WithDetail("current_status", e.Current).
		WithDetail("requested_status", e.Requested).
		WithDetail("allowed", e.Allowed)
}

// EditNotAllowedError is returned when an order is mutated or deleted after
// it left its initial status.
type EditNotAllowedError struct {
	CurrentStatus Status
}

func (e *EditNotAllowedError) Error() string {
	return fmt.Sprintf("purchase order in %s status cannot be modified", e.CurrentStatus)
}

// Unwrap exposes the error as a DomainError with structured details
func (e *EditNotAllowedError) Unwrap() error {
	return shared.NewDomainError(shared.CodeEditNotAllowed, e.Error()).
		WithDetail("current_status", e.CurrentStatus)
}

// ConcurrencyConflictError is returned when a version-checked write loses the
// race. CurrentStatus is the status re-read after the failed write.
type ConcurrencyConflictError struct {
	CurrentStatus Status
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("purchase order was modified concurrently, current status is %s", e.CurrentStatus)
}

// Unwrap exposes the error as a DomainError with structured details
func (e *ConcurrencyConflictError) Unwrap() error {
	return shared.ErrConcurrencyConflict.
		WithDetail("current_status", e.CurrentStatus)
}

func joinStatuses(statuses []Status) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
