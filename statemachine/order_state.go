package statemachine

import (
	"fmt"
	"strings"

	"starides-api/apperr"
	"starides-api/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Roles []models.UserRole  `json:"roles"`
}

var (
	vendorOrAdmin = []models.UserRole{models.RoleVendor, models.RoleAdmin}
	riderOrAdmin  = []models.UserRole{models.RoleRider, models.RoleAdmin}
	anyParty      = []models.UserRole{models.RoleCustomer, models.RoleVendor, models.RoleAdmin}
)

// validTransitions is the authoritative state machine definition.
// DELIVERED and CANCELLED are terminal.
var validTransitions = []Transition{
	// Restaurant confirms, or either side backs out early
	{From: models.StatusPending, To: models.StatusConfirmed, Roles: vendorOrAdmin},
	{From: models.StatusPending, To: models.StatusCancelled, Roles: anyParty},
	{From: models.StatusConfirmed, To: models.StatusPreparing, Roles: vendorOrAdmin},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Roles: anyParty},
	// Kitchen work; the customer can no longer cancel
	{From: models.StatusPreparing, To: models.StatusReadyForPickup, Roles: vendorOrAdmin},
	{From: models.StatusPreparing, To: models.StatusCancelled, Roles: vendorOrAdmin},
	// Rider picks up and delivers
	{From: models.StatusReadyForPickup, To: models.StatusOutForDelivery, Roles: riderOrAdmin},
	{From: models.StatusReadyForPickup, To: models.StatusCancelled, Roles: vendorOrAdmin},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Roles: riderOrAdmin},
	{From: models.StatusOutForDelivery, To: models.StatusCancelled, Roles: []models.UserRole{models.RoleAdmin}},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]map[models.UserRole]bool {
	m := make(map[transitionKey]map[models.UserRole]bool)
	for _, t := range validTransitions {
		roles := make(map[models.UserRole]bool, len(t.Roles))
		for _, r := range t.Roles {
			roles[r] = true
		}
		m[transitionKey{t.From, t.To}] = roles
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// IsValid reports whether from -> to appears in the table, regardless of role.
func IsValid(from, to models.OrderStatus) bool {
	_, ok := transitionMap[transitionKey{from, to}]
	return ok
}

// CanTransition checks the pair against the table first and only then the
// role, so an impossible move is INVALID_STATE for every caller.
func CanTransition(from, to models.OrderStatus, role models.UserRole) error {
	roles, ok := transitionMap[transitionKey{From: from, To: to}]
	if !ok {
		return apperr.InvalidState(fmt.Sprintf(
			"invalid transition: %s → %s. Valid transitions from %s are: %s",
			from, to, from, describeValidFrom(from),
		)).With("from", string(from)).With("to", string(to))
	}
	if !roles[role] {
		return apperr.Forbidden(fmt.Sprintf(
			"role %s may not move an order from %s to %s", role, from, to,
		))
	}
	return nil
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
