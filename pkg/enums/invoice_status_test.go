package enums

import "testing"

func TestInvoiceStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from InvoiceStatus
		to   InvoiceStatus
		want bool
	}{
		{InvoiceStatusDraft, InvoiceStatusReady, true},
		{InvoiceStatusReady, InvoiceStatusSubmitted, true},
		{InvoiceStatusSubmitted, InvoiceStatusPaid, true},
		{InvoiceStatusSubmitted, InvoiceStatusVoid, true},
		{InvoiceStatusReady, InvoiceStatusDraft, false},
		{InvoiceStatusSubmitted, InvoiceStatusReady, false},
		{InvoiceStatusDraft, InvoiceStatusSubmitted, false},
		{InvoiceStatusPaid, InvoiceStatusVoid, false},
		{InvoiceStatusVoid, InvoiceStatusDraft, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestInvoiceStatusLocksEdits(t *testing.T) {
	if InvoiceStatusDraft.LocksEdits() {
		t.Fatal("draft invoices must stay editable")
	}
	for _, s := range []InvoiceStatus{InvoiceStatusReady, InvoiceStatusSubmitted, InvoiceStatusPaid, InvoiceStatusVoid} {
		if !s.LocksEdits() {
			t.Fatalf("expected %s to lock edits", s)
		}
	}
}
