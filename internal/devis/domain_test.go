package devis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	lines := []Prestation{
		{Label: "Location salle", Amount: 1200},
		{Label: "Traiteur", Amount: 3450.50},
	}
	totals := ComputeTotals(20, lines)
	require.Equal(t, 4650.50, totals.PreTaxTotal)
	require.Equal(t, 930.10, totals.TaxAmount)
	require.Equal(t, 5580.60, totals.TotalWithTax)
}

func TestComputeTotalsRoundsToCents(t *testing.T) {
	totals := ComputeTotals(20, []Prestation{{Label: "Photographe", Amount: 35.50}})
	require.Equal(t, 35.50, totals.PreTaxTotal)
	require.Equal(t, 7.10, totals.TaxAmount)
	require.Equal(t, 42.60, totals.TotalWithTax)
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(20, nil)
	require.Zero(t, totals.PreTaxTotal)
	require.Zero(t, totals.TaxAmount)
	require.Zero(t, totals.TotalWithTax)
	require.Equal(t, 20.0, totals.TaxRate)
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "DEV-2025-0001", FormatNumber(2025, 1))
	require.Equal(t, "DEV-2025-0427", FormatNumber(2025, 427))
	require.Equal(t, "DEV-2026-12345", FormatNumber(2026, 12345))
}

func TestStatusCanTransition(t *testing.T) {
	cases := []struct {
		from Status
		via  Transition
		ok   bool
	}{
		{StatusDraft, TransitionSend, true},
		{StatusUnderClientReview, TransitionSend, false},
		{StatusAccepted, TransitionSend, false},
		{StatusModificationRequested, TransitionSend, false},

		{StatusUnderClientReview, TransitionAccept, true},
		{StatusSent, TransitionAccept, true},
		{StatusDraft, TransitionAccept, false},
		{StatusRefused, TransitionAccept, false},

		{StatusUnderClientReview, TransitionRefuse, true},
		{StatusSent, TransitionRefuse, true},
		{StatusAccepted, TransitionRefuse, false},

		{StatusUnderClientReview, TransitionRequestModification, true},
		{StatusSent, TransitionRequestModification, true},
		{StatusModificationRequested, TransitionRequestModification, false},

		{StatusModificationRequested, TransitionRework, true},
		{StatusDraft, TransitionRework, false},
		{StatusAccepted, TransitionRework, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, tc.from.CanTransition(tc.via),
			"from %s via %s", tc.from, tc.via)
	}
}

func TestStatusActive(t *testing.T) {
	require.True(t, StatusDraft.Active())
	require.True(t, StatusUnderClientReview.Active())
	require.True(t, StatusSent.Active())
	require.True(t, StatusAccepted.Active())
	require.True(t, StatusModificationRequested.Active())
	require.False(t, StatusRefused.Active())
	require.False(t, StatusCancelled.Active())
}

func TestStatusPendingClientDecision(t *testing.T) {
	require.True(t, StatusUnderClientReview.PendingClientDecision())
	require.True(t, StatusSent.PendingClientDecision())
	require.False(t, StatusDraft.PendingClientDecision())
	require.False(t, StatusAccepted.PendingClientDecision())
}
