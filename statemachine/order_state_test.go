package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starides-api/apperr"
	"starides-api/models"
)

var allStatuses = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReadyForPickup,
	models.StatusOutForDelivery,
	models.StatusDelivered,
	models.StatusCancelled,
}

func TestHappyPath(t *testing.T) {
	steps := []struct {
		from, to models.OrderStatus
		role     models.UserRole
	}{
		{models.StatusPending, models.StatusConfirmed, models.RoleVendor},
		{models.StatusConfirmed, models.StatusPreparing, models.RoleVendor},
		{models.StatusPreparing, models.StatusReadyForPickup, models.RoleVendor},
		{models.StatusReadyForPickup, models.StatusOutForDelivery, models.RoleRider},
		{models.StatusOutForDelivery, models.StatusDelivered, models.RoleRider},
	}
	for _, s := range steps {
		assert.NoError(t, CanTransition(s.from, s.to, s.role), "%s -> %s", s.from, s.to)
		assert.NoError(t, CanTransition(s.from, s.to, models.RoleAdmin), "admin %s -> %s", s.from, s.to)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, term := range []models.OrderStatus{models.StatusDelivered, models.StatusCancelled} {
		assert.True(t, IsTerminal(term))
		assert.Empty(t, ValidTransitionsFrom(term))
		for _, to := range allStatuses {
			err := CanTransition(term, to, models.RoleAdmin)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
		}
	}
}

func TestTableCheckedBeforeRole(t *testing.T) {
	// PENDING -> DELIVERED is not in the table: even a customer gets INVALID_STATE
	err := CanTransition(models.StatusPending, models.StatusDelivered, models.RoleCustomer)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Valid transitions from PENDING are: CONFIRMED, CANCELLED")

	// listed pair, wrong role
	err = CanTransition(models.StatusPending, models.StatusConfirmed, models.RoleRider)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestCustomerCancelWindow(t *testing.T) {
	assert.NoError(t, CanTransition(models.StatusPending, models.StatusCancelled, models.RoleCustomer))
	assert.NoError(t, CanTransition(models.StatusConfirmed, models.StatusCancelled, models.RoleCustomer))
	for _, from := range []models.OrderStatus{models.StatusPreparing, models.StatusReadyForPickup, models.StatusOutForDelivery} {
		assert.Error(t, CanTransition(from, models.StatusCancelled, models.RoleCustomer), from)
	}
}

func TestOnlyAdminCancelsInFlight(t *testing.T) {
	assert.NoError(t, CanTransition(models.StatusOutForDelivery, models.StatusCancelled, models.RoleAdmin))
	assert.True(t, apperr.Is(CanTransition(models.StatusOutForDelivery, models.StatusCancelled, models.RoleVendor), apperr.KindForbidden))
	assert.True(t, apperr.Is(CanTransition(models.StatusOutForDelivery, models.StatusCancelled, models.RoleRider), apperr.KindForbidden))
}

func TestNoSkippingForward(t *testing.T) {
	assert.False(t, IsValid(models.StatusPending, models.StatusPreparing))
	assert.False(t, IsValid(models.StatusConfirmed, models.StatusReadyForPickup))
	assert.False(t, IsValid(models.StatusPreparing, models.StatusOutForDelivery))
	assert.False(t, IsValid(models.StatusConfirmed, models.StatusPending))
}

func TestGetAllTransitionsIsACopy(t *testing.T) {
	all := GetAllTransitions()
	require.NotEmpty(t, all)
	all[0].To = models.StatusDelivered
	assert.Equal(t, models.StatusConfirmed, GetAllTransitions()[0].To)
}
