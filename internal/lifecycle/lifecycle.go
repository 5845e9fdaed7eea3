// Package lifecycle holds the order status vocabulary and the pure transition
// rules: which status may follow which, how a requested quantity is split
// across farmers, and when a split order's parent status is promoted.
// Reading and writing order documents is the order view model's job; this
// package only transforms values.
package lifecycle

import (
	"fmt"
	"strings"

	"farm-coop-api-server/internal/models"
)

const (
	StatusPending    = "PENDING"
	StatusAccepted   = "ACCEPTED"
	StatusRejected   = "REJECTED"
	StatusPreparing  = "PREPARING"
	StatusPlanting   = "PLANTING"
	StatusHarvesting = "HARVESTING"
	StatusDelivering = "DELIVERING"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// RejectReasons is the fixed list a farmer chooses from when declining an
// order. Anything else is a validation error.
var RejectReasons = []string{"Out of stock", "Too Far", "Not Available"}

func ValidRejectReason(reason string) bool {
	for _, r := range RejectReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// transitions is the forward edge set. REJECTED, CANCELLED and COMPLETED are
// absorbing. PREPARING is the alternate immediate-post-acceptance state for
// the simple flow that skips the farming milestones.
var transitions = map[string][]string{
	StatusPending:    {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:   {StatusPreparing, StatusPlanting, StatusCancelled},
	StatusPreparing:  {StatusDelivering, StatusCancelled},
	StatusPlanting:   {StatusHarvesting},
	StatusHarvesting: {StatusDelivering},
	StatusDelivering: {StatusCompleted},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SplitShares divides quantity across n farmers: quantity/n each, with the
// integer-division remainder assigned to the last farmer. The shares always
// sum to quantity.
func SplitShares(quantity, n int) []int {
	if n <= 0 {
		return nil
	}
	shares := make([]int, n)
	each := quantity / n
	for i := range shares {
		shares[i] = each
	}
	shares[n-1] += quantity % n
	return shares
}

// Deduct reduces a farmer's item quantity by share, floored at zero.
func Deduct(item *models.ItemData, share int) {
	item.Quantity -= share
	if item.Quantity < 0 {
		item.Quantity = 0
	}
}

// AllCompleted reports whether every fulfilled-by entry has reached
// COMPLETED. An empty list is never "all completed".
func AllCompleted(entries []models.FulfilledBy) bool {
	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		if e.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// Accept marks a pending order accepted. For a partial fulfillment it builds
// one fulfilled-by entry per farmer, each starting at ACCEPTED; a full
// fulfillment leaves fulfilledBy empty and the order follows the simple flow.
func Accept(order *models.OrderData, farmerNames []string) error {
	if !CanTransition(order.Status, StatusAccepted) {
		return fmt.Errorf("order %s cannot be accepted from status %s", order.OrderID, order.Status)
	}
	order.Status = StatusAccepted
	if len(farmerNames) > 1 {
		entries := make([]models.FulfilledBy, 0, len(farmerNames))
		for _, name := range farmerNames {
			entries = append(entries, models.FulfilledBy{FarmerName: name, Status: StatusAccepted})
		}
		order.FulfilledBy = entries
	}
	return nil
}

// Reject marks a pending order rejected with one of the enumerated reasons.
func Reject(order *models.OrderData, reason string) error {
	if !ValidRejectReason(reason) {
		return fmt.Errorf("invalid reject reason %q", reason)
	}
	if !CanTransition(order.Status, StatusRejected) {
		return fmt.Errorf("order %s cannot be rejected from status %s", order.OrderID, order.Status)
	}
	order.Status = StatusRejected
	order.RejectReason = reason
	return nil
}

// AdvanceEntry moves one farmer's fulfilled-by entry to newStatus, leaving
// the other entries untouched, and promotes the parent order to COMPLETED
// once every entry is COMPLETED. Re-applying a status already held by the
// entry is a no-op, so the COMPLETED transition is idempotent.
func AdvanceEntry(order *models.OrderData, farmerName, newStatus string) error {
	for i := range order.FulfilledBy {
		entry := &order.FulfilledBy[i]
		if !strings.EqualFold(entry.FarmerName, farmerName) {
			continue
		}
		if entry.Status != newStatus {
			if !CanTransition(entry.Status, newStatus) {
				return fmt.Errorf("farmer %s cannot move from %s to %s", farmerName, entry.Status, newStatus)
			}
			entry.Status = newStatus
		}
		if AllCompleted(order.FulfilledBy) {
			order.Status = StatusCompleted
		}
		return nil
	}
	return fmt.Errorf("farmer %s is not fulfilling order %s", farmerName, order.OrderID)
}

// AdvanceOrder moves a simple (non-split) order to newStatus.
func AdvanceOrder(order *models.OrderData, newStatus string) error {
	if order.Status == newStatus {
		return nil
	}
	if !CanTransition(order.Status, newStatus) {
		return fmt.Errorf("order %s cannot move from %s to %s", order.OrderID, order.Status, newStatus)
	}
	order.Status = newStatus
	return nil
}
