package viewmodel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"

	"github.com/google/uuid"
)

const (
	salesRoot     = "sales"
	purchasesRoot = "purchaseOrders"
)

type SaleViewModel struct {
	*listVM[models.SalesData]
}

func NewSaleViewModel(s store.Store) *SaleViewModel {
	return &SaleViewModel{
		listVM: newListVM(s, "sales", saleValid, saleSearchFields),
	}
}

func saleValid(s models.SalesData) bool { return s.SalesNumber != "" }

func saleSearchFields(s models.SalesData) []string {
	return []string{s.SalesNumber, s.ProductName, s.FacilityName, s.Notes}
}

// SaleFilter narrows a fetch: keywords plus a facility and a date range.
type SaleFilter struct {
	Keywords     string
	FacilityName string
	From         time.Time
	To           time.Time
}

func (vm *SaleViewModel) FetchSales(f SaleFilter) {
	keep := func(s models.SalesData) bool {
		if f.FacilityName != "" && !strings.EqualFold(s.FacilityName, f.FacilityName) {
			return false
		}
		if !f.From.IsZero() && s.Date.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && s.Date.After(f.To) {
			return false
		}
		return true
	}
	vm.fetch(salesRoot, false, Keywords(f.Keywords), keep)
}

func (vm *SaleViewModel) AddSale(ctx context.Context, sale models.SalesData, onSuccess func(models.SalesData), onError func(error)) {
	sale.SalesNumber = fmt.Sprintf("SO-%s", uuid.New().String()[:8])
	if sale.Date.IsZero() {
		sale.Date = time.Now()
	}
	key := vm.Store.GenerateKey(salesRoot)
	if err := vm.Store.Write(ctx, salesRoot+"/"+key, sale); err != nil {
		onError(err)
		return
	}
	onSuccess(sale)
}

func (vm *SaleViewModel) UpdateSale(ctx context.Context, sale models.SalesData, onSuccess func(models.SalesData), onError func(error)) {
	key, err := resolveByField(ctx, vm.Store, salesRoot, "salesNumber", sale.SalesNumber, "sale")
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, salesRoot+"/"+key, sale); err != nil {
		onError(err)
		return
	}
	onSuccess(sale)
}

func (vm *SaleViewModel) DeleteSale(ctx context.Context, salesNumber string, onSuccess func(), onError func(error)) {
	key, err := resolveByField(ctx, vm.Store, salesRoot, "salesNumber", salesNumber, "sale")
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Delete(ctx, salesRoot+"/"+key); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

type PurchaseOrderViewModel struct {
	*listVM[models.PurchaseOrder]
}

func NewPurchaseOrderViewModel(s store.Store) *PurchaseOrderViewModel {
	return &PurchaseOrderViewModel{
		listVM: newListVM(s, "purchaseOrders", purchaseValid, purchaseSearchFields),
	}
}

func purchaseValid(p models.PurchaseOrder) bool { return p.PurchaseNumber != "" }

func purchaseSearchFields(p models.PurchaseOrder) []string {
	fields := []string{p.PurchaseNumber, p.VendorEmail, p.FacilityName, p.Status}
	for _, item := range p.Items {
		fields = append(fields, item.ItemName)
	}
	return fields
}

func (vm *PurchaseOrderViewModel) FetchPurchaseOrders(keywords, status, facilityName string) {
	statuses := Keywords(status)
	keep := func(p models.PurchaseOrder) bool {
		if facilityName != "" && !strings.EqualFold(p.FacilityName, facilityName) {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if strings.EqualFold(p.Status, s) {
				return true
			}
		}
		return false
	}
	vm.fetch(purchasesRoot, false, Keywords(keywords), keep)
}

func (vm *PurchaseOrderViewModel) AddPurchaseOrder(ctx context.Context, po models.PurchaseOrder, onSuccess func(models.PurchaseOrder), onError func(error)) {
	po.PurchaseNumber = fmt.Sprintf("PO-%s", uuid.New().String()[:8])
	if po.DateAdded.IsZero() {
		po.DateAdded = time.Now()
	}
	if po.Status == "" {
		po.Status = "pending"
	}
	key := vm.Store.GenerateKey(purchasesRoot)
	if err := vm.Store.Write(ctx, purchasesRoot+"/"+key, po); err != nil {
		onError(err)
		return
	}
	onSuccess(po)
}

// UpdatePurchaseOrder overwrites the record addressed by purchaseNumber.
func (vm *PurchaseOrderViewModel) UpdatePurchaseOrder(ctx context.Context, po models.PurchaseOrder, onSuccess func(models.PurchaseOrder), onError func(error)) {
	key, err := resolveByField(ctx, vm.Store, purchasesRoot, "purchaseNumber", po.PurchaseNumber, "purchase order")
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, purchasesRoot+"/"+key, po); err != nil {
		onError(err)
		return
	}
	onSuccess(po)
}

func (vm *PurchaseOrderViewModel) DeletePurchaseOrder(ctx context.Context, purchaseNumber string, onSuccess func(), onError func(error)) {
	key, err := resolveByField(ctx, vm.Store, purchasesRoot, "purchaseNumber", purchaseNumber, "purchase order")
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Delete(ctx, purchasesRoot+"/"+key); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

// resolveByField maps a business identifier to a store key with a one-shot
// indexed query. The lookup and the keyed operation that follows it are two
// separate steps; a concurrent delete between them surfaces as not-found.
func resolveByField(ctx context.Context, s store.Store, parent, field, value, entity string) (string, error) {
	matches, err := s.QueryEqual(ctx, parent, field, value)
	if err != nil {
		return "", err
	}
	for key := range matches {
		return key, nil
	}
	return "", fmt.Errorf("%s not found", entity)
}
