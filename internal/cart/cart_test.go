package cart

import "testing"

func TestCart_TerminalID(t *testing.T) {
	c := &Cart{TenantID: "acme", StoreCode: "s1", TerminalNo: "t1"}
	if got, want := c.TerminalID(), "acme-s1-t1"; got != want {
		t.Errorf("TerminalID() = %q, want %q", got, want)
	}
}

func TestCart_IsTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusInitial, false},
		{StatusIdle, false},
		{StatusEnteringItem, false},
		{StatusPaying, false},
		{StatusCompleted, true},
		{StatusCancelled, true},
	}
	for _, tt := range tests {
		c := &Cart{Status: tt.status}
		if got := c.IsTerminal(); got != tt.want {
			t.Errorf("status %s: IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestLineItem_IsFullyReturned(t *testing.T) {
	li := &LineItem{Quantity: 3, ReturnedQuantity: 2}
	if li.IsFullyReturned() {
		t.Error("expected partial return to not be fully returned")
	}
	li.ReturnedQuantity = 3
	if !li.IsFullyReturned() {
		t.Error("expected full return to be fully returned")
	}
}

func TestEventDelivery_Recompute(t *testing.T) {
	e := &EventDelivery{Services: []ServiceDelivery{
		{ServiceName: "report", Status: DeliveryDelivered},
		{ServiceName: "journal", Status: DeliveryPending},
	}}
	e.Recompute()
	if e.OverallStatus != DeliveryPartiallyDelivered {
		t.Errorf("expected partially_delivered, got %s", e.OverallStatus)
	}

	e.Services[1].Status = DeliveryDelivered
	e.Recompute()
	if e.OverallStatus != DeliveryDelivered {
		t.Errorf("expected delivered, got %s", e.OverallStatus)
	}

	e2 := &EventDelivery{Services: []ServiceDelivery{
		{ServiceName: "stock", Status: DeliveryFailed},
	}}
	e2.Recompute()
	if e2.OverallStatus != DeliveryFailed {
		t.Errorf("expected failed, got %s", e2.OverallStatus)
	}
}
