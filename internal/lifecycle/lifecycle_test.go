package lifecycle

import (
	"testing"

	"farm-coop-api-server/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusPreparing, true},
		{StatusAccepted, StatusPlanting, true},
		{StatusAccepted, StatusRejected, false},
		{StatusPreparing, StatusDelivering, true},
		{StatusPlanting, StatusHarvesting, true},
		{StatusPlanting, StatusDelivering, false},
		{StatusHarvesting, StatusDelivering, true},
		{StatusDelivering, StatusCompleted, true},
		{StatusCompleted, StatusPending, false},
		{StatusRejected, StatusAccepted, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSplitShares(t *testing.T) {
	tests := []struct {
		quantity, n int
		want        []int
	}{
		{100, 3, []int{33, 33, 34}},
		{100, 1, []int{100}},
		{10, 2, []int{5, 5}},
		{7, 4, []int{1, 1, 1, 4}},
		{0, 3, []int{0, 0, 0}},
	}
	for _, tt := range tests {
		got := SplitShares(tt.quantity, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("SplitShares(%d, %d) = %v, want %v", tt.quantity, tt.n, got, tt.want)
		}
		sum := 0
		for i := range got {
			sum += got[i]
			if got[i] != tt.want[i] {
				t.Errorf("SplitShares(%d, %d) = %v, want %v", tt.quantity, tt.n, got, tt.want)
				break
			}
		}
		if sum != tt.quantity {
			t.Errorf("SplitShares(%d, %d) sums to %d", tt.quantity, tt.n, sum)
		}
	}

	if got := SplitShares(10, 0); got != nil {
		t.Errorf("SplitShares(10, 0) = %v, want nil", got)
	}
}

func TestDeductFloorsAtZero(t *testing.T) {
	item := models.ItemData{Name: "Tomato", Quantity: 30}
	Deduct(&item, 20)
	if item.Quantity != 10 {
		t.Errorf("Quantity = %d, want 10", item.Quantity)
	}
	Deduct(&item, 25)
	if item.Quantity != 0 {
		t.Errorf("Quantity = %d, want 0", item.Quantity)
	}
}

func TestAcceptSingleFarmer(t *testing.T) {
	order := models.OrderData{OrderID: "ORD-1", Status: StatusPending}
	if err := Accept(&order, []string{"Juan"}); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if order.Status != StatusAccepted {
		t.Errorf("Status = %s, want %s", order.Status, StatusAccepted)
	}
	if len(order.FulfilledBy) != 0 {
		t.Errorf("FulfilledBy = %v, want empty for a single farmer", order.FulfilledBy)
	}
}

func TestAcceptMultipleFarmers(t *testing.T) {
	order := models.OrderData{OrderID: "ORD-1", Status: StatusPending}
	if err := Accept(&order, []string{"Juan", "Maria", "Pedro"}); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(order.FulfilledBy) != 3 {
		t.Fatalf("len(FulfilledBy) = %d, want 3", len(order.FulfilledBy))
	}
	for _, e := range order.FulfilledBy {
		if e.Status != StatusAccepted {
			t.Errorf("entry %s status = %s, want %s", e.FarmerName, e.Status, StatusAccepted)
		}
	}
}

func TestAcceptRejectsNonPending(t *testing.T) {
	order := models.OrderData{OrderID: "ORD-1", Status: StatusCompleted}
	if err := Accept(&order, []string{"Juan"}); err == nil {
		t.Error("expected error accepting a completed order")
	}
}

func TestReject(t *testing.T) {
	order := models.OrderData{OrderID: "ORD-1", Status: StatusPending}
	if err := Reject(&order, "Too Far"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if order.Status != StatusRejected || order.RejectReason != "Too Far" {
		t.Errorf("got status %s reason %q", order.Status, order.RejectReason)
	}
}

func TestRejectInvalidReason(t *testing.T) {
	order := models.OrderData{OrderID: "ORD-1", Status: StatusPending}
	if err := Reject(&order, "Just because"); err == nil {
		t.Error("expected error for a reason outside the fixed list")
	}
	if order.Status != StatusPending {
		t.Errorf("Status = %s, order must be untouched on error", order.Status)
	}
}

func TestAdvanceEntryPromotesParent(t *testing.T) {
	order := models.OrderData{
		OrderID: "ORD-1",
		Status:  StatusAccepted,
		FulfilledBy: []models.FulfilledBy{
			{FarmerName: "Juan", Status: StatusDelivering},
			{FarmerName: "Maria", Status: StatusDelivering},
		},
	}

	if err := AdvanceEntry(&order, "Juan", StatusCompleted); err != nil {
		t.Fatalf("AdvanceEntry: %v", err)
	}
	if order.Status == StatusCompleted {
		t.Error("parent promoted before every entry completed")
	}

	if err := AdvanceEntry(&order, "maria", StatusCompleted); err != nil {
		t.Fatalf("AdvanceEntry (case-insensitive name): %v", err)
	}
	if order.Status != StatusCompleted {
		t.Errorf("Status = %s, want %s after all entries complete", order.Status, StatusCompleted)
	}
}

func TestAdvanceEntryIdempotent(t *testing.T) {
	order := models.OrderData{
		OrderID: "ORD-1",
		Status:  StatusCompleted,
		FulfilledBy: []models.FulfilledBy{
			{FarmerName: "Juan", Status: StatusCompleted},
		},
	}
	if err := AdvanceEntry(&order, "Juan", StatusCompleted); err != nil {
		t.Fatalf("re-applying the held status must be a no-op, got %v", err)
	}
}

func TestAdvanceEntryUnknownFarmer(t *testing.T) {
	order := models.OrderData{
		OrderID:     "ORD-1",
		Status:      StatusAccepted,
		FulfilledBy: []models.FulfilledBy{{FarmerName: "Juan", Status: StatusAccepted}},
	}
	if err := AdvanceEntry(&order, "Pedro", StatusPlanting); err == nil {
		t.Error("expected error for a farmer not on the order")
	}
}

func TestAdvanceEntryInvalidTransition(t *testing.T) {
	order := models.OrderData{
		OrderID:     "ORD-1",
		Status:      StatusAccepted,
		FulfilledBy: []models.FulfilledBy{{FarmerName: "Juan", Status: StatusPlanting}},
	}
	if err := AdvanceEntry(&order, "Juan", StatusCompleted); err == nil {
		t.Error("expected error skipping from PLANTING to COMPLETED")
	}
}

func TestAllCompleted(t *testing.T) {
	if AllCompleted(nil) {
		t.Error("empty entry list must not count as completed")
	}
	entries := []models.FulfilledBy{
		{FarmerName: "Juan", Status: StatusCompleted},
		{FarmerName: "Maria", Status: StatusDelivering},
	}
	if AllCompleted(entries) {
		t.Error("one entry still delivering")
	}
	entries[1].Status = StatusCompleted
	if !AllCompleted(entries) {
		t.Error("all entries completed")
	}
}

func TestAdvanceOrder(t *testing.T) {
	order := models.OrderData{OrderID: "ORD-1", Status: StatusAccepted}
	if err := AdvanceOrder(&order, StatusPreparing); err != nil {
		t.Fatalf("AdvanceOrder: %v", err)
	}
	if err := AdvanceOrder(&order, StatusPreparing); err != nil {
		t.Fatalf("same-status advance must be a no-op, got %v", err)
	}
	if err := AdvanceOrder(&order, StatusCompleted); err == nil {
		t.Error("expected error skipping from PREPARING to COMPLETED")
	}
}
