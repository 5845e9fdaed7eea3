package viewmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"farm-coop-api-server/internal/auth"
	"farm-coop-api-server/internal/lifecycle"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"

	"github.com/google/uuid"
)

const (
	ordersRoot       = "orders"
	itemsRoot        = "items"
	transactionsRoot = "transactions"
)

// OrderViewModel owns the orders subscription and every order mutation,
// including the farmer-side lifecycle transitions.
type OrderViewModel struct {
	*listVM[models.OrderData]
	user auth.CurrentUser
}

func NewOrderViewModel(s store.Store, user auth.CurrentUser) *OrderViewModel {
	return &OrderViewModel{
		listVM: newListVM(s, "orders", orderValid, orderSearchFields),
		user:   user,
	}
}

func orderValid(o models.OrderData) bool { return o.OrderID != "" }

func orderSearchFields(o models.OrderData) []string {
	fields := []string{
		o.OrderID, o.Status, o.Client, o.Barangay, o.Street,
		o.OrderData.Name, o.OrderData.Type,
	}
	for _, e := range o.FulfilledBy {
		fields = append(fields, e.FarmerName, e.Status)
	}
	return fields
}

// OrderFilter narrows a fetch. ClientUID restricts the watched path to one
// client's orders; empty watches the whole collection. Statuses is a
// comma-separated status list AND-combined with the keyword filter.
type OrderFilter struct {
	ClientUID string
	Keywords  string
	Statuses  string
	Farmer    string // keep only orders with a fulfilled-by entry for this farmer
}

func (vm *OrderViewModel) FetchOrders(f OrderFilter) {
	path := ordersRoot
	nested := true
	if f.ClientUID != "" {
		path = ordersRoot + "/" + f.ClientUID
		nested = false
	}
	statuses := Keywords(f.Statuses)
	keep := func(o models.OrderData) bool {
		if len(statuses) > 0 {
			ok := false
			for _, s := range statuses {
				if strings.EqualFold(o.Status, s) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		if f.Farmer != "" {
			for _, e := range o.FulfilledBy {
				if strings.EqualFold(e.FarmerName, f.Farmer) {
					return true
				}
			}
			return false
		}
		return true
	}
	vm.fetch(path, nested, Keywords(f.Keywords), keep)
}

// PlaceOrder writes a new PENDING order under the current user and appends
// the audit transaction record. The generated order ID is returned through
// onSuccess.
func (vm *OrderViewModel) PlaceOrder(ctx context.Context, order models.OrderData, onSuccess func(models.OrderData), onError func(error)) {
	order.OrderID = fmt.Sprintf("ORD-%s", uuid.New().String()[:8])
	order.OrderDate = time.Now()
	order.Status = lifecycle.StatusPending
	order.Client = vm.user.Email

	parent := ordersRoot + "/" + vm.user.UID
	key := vm.Store.GenerateKey(parent)
	if err := vm.Store.Write(ctx, parent+"/"+key, order); err != nil {
		onError(err)
		return
	}
	vm.appendTransaction(ctx, "Order placed", order.Status, order.OrderID)
	onSuccess(order)
}

// UpdateOrder resolves the record by its order ID and overwrites it whole.
// The lookup and the write are two separate steps; a concurrent delete in
// between surfaces as not found, not as a write conflict.
func (vm *OrderViewModel) UpdateOrder(ctx context.Context, order models.OrderData, onSuccess func(models.OrderData), onError func(error)) {
	path, _, err := vm.resolveOrder(ctx, order.OrderID)
	if err != nil {
		onError(notFoundError("order", err))
		return
	}
	if err := vm.Store.Write(ctx, path, order); err != nil {
		onError(err)
		return
	}
	vm.appendTransaction(ctx, "Order updated", order.Status, order.OrderID)
	onSuccess(order)
}

func (vm *OrderViewModel) DeleteOrder(ctx context.Context, orderID string, onSuccess func(), onError func(error)) {
	path, _, err := vm.resolveOrder(ctx, orderID)
	if err != nil {
		onError(notFoundError("order", err))
		return
	}
	if err := vm.Store.Delete(ctx, path); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

// FarmerRef names one farmer taking part in a fulfillment: the store key of
// the farmer's user record (their inventory lives under it) and the display
// name recorded in the fulfilled-by entries.
type FarmerRef struct {
	UID  string
	Name string
}

// AcceptOrder handles the farmer acceptance decision. One farmer is a full
// fulfillment; several divide the requested quantity evenly with the
// remainder on the last farmer. Each farmer's inventory is reduced by their
// share, floored at zero.
func (vm *OrderViewModel) AcceptOrder(ctx context.Context, orderID string, farmers []FarmerRef, onSuccess func(models.OrderData), onError func(error)) {
	if len(farmers) == 0 {
		onError(fmt.Errorf("at least one farmer is required"))
		return
	}
	path, order, err := vm.resolveOrder(ctx, orderID)
	if err != nil {
		onError(notFoundError("order", err))
		return
	}

	names := make([]string, len(farmers))
	for i, f := range farmers {
		names[i] = f.Name
	}
	if err := lifecycle.Accept(&order, names); err != nil {
		onError(err)
		return
	}

	shares := lifecycle.SplitShares(order.OrderData.Quantity, len(farmers))
	for i, f := range farmers {
		if err := vm.deductInventory(ctx, f.UID, order.OrderData.Name, shares[i]); err != nil {
			onError(fmt.Errorf("deduct inventory for %s: %w", f.Name, err))
			return
		}
	}

	if err := vm.Store.Write(ctx, path, order); err != nil {
		onError(err)
		return
	}
	vm.appendTransaction(ctx, "Order accepted", order.Status, order.OrderID)
	onSuccess(order)
}

// RejectOrder declines a pending order with one of the enumerated reasons.
func (vm *OrderViewModel) RejectOrder(ctx context.Context, orderID, reason string, onSuccess func(models.OrderData), onError func(error)) {
	path, order, err := vm.resolveOrder(ctx, orderID)
	if err != nil {
		onError(notFoundError("order", err))
		return
	}
	if err := lifecycle.Reject(&order, reason); err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, path, order); err != nil {
		onError(err)
		return
	}
	vm.appendTransaction(ctx, "Order rejected: "+reason, order.Status, order.OrderID)
	onSuccess(order)
}

// AdvanceFarmerStatus moves one farmer's fulfilled-by entry forward. The
// entry update runs inside a store transaction so two farmers advancing
// concurrently cannot overwrite each other's entries; the parent COMPLETED
// promotion stays a check-then-set because re-setting COMPLETED is harmless.
func (vm *OrderViewModel) AdvanceFarmerStatus(ctx context.Context, orderID, farmerName, newStatus string, onSuccess func(models.OrderData), onError func(error)) {
	path, _, err := vm.resolveOrder(ctx, orderID)
	if err != nil {
		onError(notFoundError("order", err))
		return
	}

	var updated models.OrderData
	err = vm.Store.RunAtomic(ctx, path, func(current json.RawMessage) (interface{}, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		var order models.OrderData
		if err := json.Unmarshal(current, &order); err != nil {
			return nil, err
		}
		if err := lifecycle.AdvanceEntry(&order, farmerName, newStatus); err != nil {
			return nil, err
		}
		updated = order
		return order, nil
	})
	if err != nil {
		onError(notFoundError("order", err))
		return
	}
	vm.appendTransaction(ctx, fmt.Sprintf("Farmer %s moved to %s", farmerName, newStatus), updated.Status, orderID)
	onSuccess(updated)
}

// CancelOrder withdraws one of the caller's own orders. The lookup is scoped
// to the caller's subtree, so an order ID belonging to another client reports
// not found.
func (vm *OrderViewModel) CancelOrder(ctx context.Context, orderID string, onSuccess func(models.OrderData), onError func(error)) {
	parent := ordersRoot + "/" + vm.user.UID
	snap, err := vm.Store.Read(ctx, parent)
	if err != nil {
		onError(err)
		return
	}
	path := ""
	var order models.OrderData
	for key, raw := range snap.Children() {
		var o models.OrderData
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		if o.OrderID == orderID {
			path = parent + "/" + key
			order = o
			break
		}
	}
	if path == "" {
		onError(notFoundError("order", store.ErrNotFound))
		return
	}
	if err := lifecycle.AdvanceOrder(&order, lifecycle.StatusCancelled); err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, path, order); err != nil {
		onError(err)
		return
	}
	vm.appendTransaction(ctx, "Order cancelled", order.Status, orderID)
	onSuccess(order)
}

// AdvanceAsFarmer moves the given farmer's share of an order forward. On a
// split order the farmer's fulfilled-by entry advances; a single-farmer
// order has no entries, so the whole order advances instead.
func (vm *OrderViewModel) AdvanceAsFarmer(ctx context.Context, orderID, farmerName, newStatus string, onSuccess func(models.OrderData), onError func(error)) {
	_, order, err := vm.resolveOrder(ctx, orderID)
	if err != nil {
		onError(notFoundError("order", err))
		return
	}
	if len(order.FulfilledBy) > 0 {
		vm.AdvanceFarmerStatus(ctx, orderID, farmerName, newStatus, onSuccess, onError)
		return
	}
	vm.AdvanceOrderStatus(ctx, orderID, newStatus, onSuccess, onError)
}

// AdvanceOrderStatus moves a simple (non-split) order forward.
func (vm *OrderViewModel) AdvanceOrderStatus(ctx context.Context, orderID, newStatus string, onSuccess func(models.OrderData), onError func(error)) {
	path, order, err := vm.resolveOrder(ctx, orderID)
	if err != nil {
		onError(notFoundError("order", err))
		return
	}
	if err := lifecycle.AdvanceOrder(&order, newStatus); err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, path, order); err != nil {
		onError(err)
		return
	}
	vm.appendTransaction(ctx, "Order moved to "+newStatus, order.Status, orderID)
	onSuccess(order)
}

// resolveOrder scans the whole orders tree for the record carrying orderID
// and returns its full path. Matching is exact on the generated ID.
func (vm *OrderViewModel) resolveOrder(ctx context.Context, orderID string) (string, models.OrderData, error) {
	snap, err := vm.Store.Read(ctx, ordersRoot)
	if err != nil {
		return "", models.OrderData{}, err
	}
	for uid, raw := range snap.Children() {
		var byKey map[string]json.RawMessage
		if err := json.Unmarshal(raw, &byKey); err != nil {
			continue
		}
		for key, orderRaw := range byKey {
			var order models.OrderData
			if err := json.Unmarshal(orderRaw, &order); err != nil {
				continue
			}
			if order.OrderID == orderID {
				return ordersRoot + "/" + uid + "/" + key, order, nil
			}
		}
	}
	return "", models.OrderData{}, store.ErrNotFound
}

// deductInventory finds the farmer's item matching the product name
// (case-insensitive) and reduces its quantity by share inside a store
// transaction. A missing item is reported as not found.
func (vm *OrderViewModel) deductInventory(ctx context.Context, farmerUID, productName string, share int) error {
	parent := itemsRoot + "/" + farmerUID
	snap, err := vm.Store.Read(ctx, parent)
	if err != nil {
		return err
	}
	itemKey := ""
	for key, raw := range snap.Children() {
		var item models.ItemData
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if strings.EqualFold(item.Name, productName) {
			itemKey = key
			break
		}
	}
	if itemKey == "" {
		return fmt.Errorf("item %q: %w", productName, store.ErrNotFound)
	}

	return vm.Store.RunAtomic(ctx, parent+"/"+itemKey, func(current json.RawMessage) (interface{}, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		var item models.ItemData
		if err := json.Unmarshal(current, &item); err != nil {
			return nil, err
		}
		lifecycle.Deduct(&item, share)
		return item, nil
	})
}

// appendTransaction adds the audit record for an order mutation. Failures
// are logged through the returned error path of the main mutation only when
// the mutation itself failed; a lost audit record does not fail the action.
func (vm *OrderViewModel) appendTransaction(ctx context.Context, description, status, orderID string) {
	key := vm.Store.GenerateKey(transactionsRoot)
	txn := models.TransactionData{
		TransactionID: fmt.Sprintf("TXN-%s", uuid.New().String()[:8]),
		Date:          time.Now(),
		Description:   description,
		Status:        status,
		OrderID:       orderID,
	}
	_ = vm.Store.Write(ctx, transactionsRoot+"/"+key, txn)
}

func notFoundError(entity string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s not found", entity)
	}
	return err
}
