package payment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-engine/internal/payment"
)

func TestSettleFullPayment(t *testing.T) {
	s := payment.Settle(2000, 2500, false, 0)
	require.Equal(t, int64(2000), s.AmountDue)
	require.Equal(t, int64(500), s.ChangeDue)
	require.Equal(t, int64(0), s.RemainingBalance)
	require.True(t, s.Satisfied)
}

func TestSettleUnderpaid(t *testing.T) {
	s := payment.Settle(2000, 1500, false, 0)
	require.False(t, s.Satisfied)
	require.Equal(t, int64(0), s.ChangeDue)
}

func TestSettlePartial(t *testing.T) {
	s := payment.Settle(2000, 1200, true, 1200)
	require.Equal(t, int64(1200), s.AmountDue)
	require.Equal(t, int64(800), s.RemainingBalance)
	require.Equal(t, int64(0), s.ChangeDue)
	require.True(t, s.Satisfied)
}

func TestSettlePartialClampsAmount(t *testing.T) {
	s := payment.Settle(2000, 2500, true, 9999)
	require.Equal(t, int64(2000), s.AmountDue)
	require.Equal(t, int64(0), s.RemainingBalance)
	require.Equal(t, int64(500), s.ChangeDue)

	s = payment.Settle(2000, 500, true, -10)
	require.Equal(t, int64(0), s.AmountDue)
	require.Equal(t, int64(2000), s.RemainingBalance)
	// nothing due now, so any tender satisfies and overage is change
	require.True(t, s.Satisfied)
	require.Equal(t, int64(500), s.ChangeDue)
}

func TestSettlePartialOverpaidGivesChange(t *testing.T) {
	s := payment.Settle(2000, 1500, true, 1200)
	require.Equal(t, int64(300), s.ChangeDue)
	require.Equal(t, int64(800), s.RemainingBalance)
}

func TestValidMethod(t *testing.T) {
	for _, m := range []payment.Method{payment.MethodCash, payment.MethodCard, payment.MethodCredit} {
		if !payment.ValidMethod(m) {
			t.Fatalf("%s should be valid", m)
		}
	}
	if payment.ValidMethod("cheque") {
		t.Fatal("cheque should not be valid")
	}
}
