package billing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinestream/billing/internal/billing"
)

func addMethod(t *testing.T, svc *billing.Service, userID uuid.UUID, isDefault bool) *billing.PaymentMethod {
	t.Helper()
	pm, err := svc.AddPaymentMethod(context.Background(), userID, billing.AddPaymentMethodParams{
		MethodType:  "credit_card",
		CardNumber:  "4111111111111111",
		CardBrand:   "visa",
		ExpiryMonth: 12,
		ExpiryYear:  fixedNow.Year() + 2,
		BillingName: "Test User",
		IsDefault:   isDefault,
	})
	require.NoError(t, err)
	return pm
}

func countDefaults(t *testing.T, svc *billing.Service, userID uuid.UUID) int {
	t.Helper()
	methods, err := svc.ListPaymentMethods(context.Background(), userID)
	require.NoError(t, err)
	var n int
	for _, m := range methods {
		if m.IsDefault {
			n++
		}
	}
	return n
}

func TestService_AddPaymentMethod(t *testing.T) {
	t.Parallel()

	t.Run("stores only the last four digits", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, _ := newFixture(t, userID)

		methods, err := svc.ListPaymentMethods(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, methods, 1)
		assert.Equal(t, "1111", methods[0].CardLastFour)
	})

	t.Run("new default demotes the previous one", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, firstID := newFixture(t, userID) // fixture method is default
		second := addMethod(t, svc, userID, true)

		methods, err := svc.ListPaymentMethods(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, methods, 2)
		assert.Equal(t, 1, countDefaults(t, svc, userID))
		assert.Equal(t, second.ID, methods[0].ID, "default must be listed first")
		assert.Equal(t, firstID, methods[1].ID)
	})

	t.Run("non-default addition keeps the existing default", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, firstID := newFixture(t, userID)
		addMethod(t, svc, userID, false)

		methods, err := svc.ListPaymentMethods(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, methods, 2)
		assert.Equal(t, firstID, methods[0].ID)
		assert.True(t, methods[0].IsDefault)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newFixture(t, uuid.New())

		_, err := svc.AddPaymentMethod(context.Background(), uuid.New(), billing.AddPaymentMethodParams{
			MethodType:  "",
			CardNumber:  "41x1",
			ExpiryMonth: 13,
			ExpiryYear:  fixedNow.Year() - 1,
			BillingName: " ",
		})
		require.Error(t, err)

		var ve billing.ValidationErrors
		require.ErrorAs(t, err, &ve)
		fields := ve.Fields()
		assert.Contains(t, fields, "type")
		assert.Contains(t, fields, "card_number")
		assert.Contains(t, fields, "expiry_month")
		assert.Contains(t, fields, "expiry_year")
		assert.Contains(t, fields, "billing_name")
	})
}

func TestService_SetDefaultPaymentMethod(t *testing.T) {
	t.Parallel()

	t.Run("promotes target and demotes the rest", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, _ := newFixture(t, userID)
		second := addMethod(t, svc, userID, false)

		require.NoError(t, svc.SetDefaultPaymentMethod(context.Background(), userID, second.ID))

		methods, err := svc.ListPaymentMethods(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, 1, countDefaults(t, svc, userID))
		assert.Equal(t, second.ID, methods[0].ID)
	})

	t.Run("method of another user", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		err := svc.SetDefaultPaymentMethod(context.Background(), uuid.New(), methodID)
		assert.ErrorIs(t, err, billing.ErrPaymentMethodNotFound)
	})
}

func TestService_RemovePaymentMethod(t *testing.T) {
	t.Parallel()

	t.Run("removing the only method leaves zero defaults", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		require.NoError(t, svc.RemovePaymentMethod(context.Background(), userID, methodID))

		methods, err := svc.ListPaymentMethods(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, methods)
	})

	t.Run("removing the default does not promote another method", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, defaultID := newFixture(t, userID)
		addMethod(t, svc, userID, false)

		require.NoError(t, svc.RemovePaymentMethod(context.Background(), userID, defaultID))

		assert.Equal(t, 0, countDefaults(t, svc, userID))
	})

	t.Run("removed method cannot be removed twice", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		require.NoError(t, svc.RemovePaymentMethod(context.Background(), userID, methodID))
		err := svc.RemovePaymentMethod(context.Background(), userID, methodID)
		assert.ErrorIs(t, err, billing.ErrPaymentMethodNotFound)
	})
}

func TestLastFour(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1111", billing.LastFour("4111111111111111"))
	assert.Equal(t, "1234", billing.LastFour("1234"))
}
