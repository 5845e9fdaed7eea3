package viewmodel

import (
	"context"
	"fmt"
	"strings"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

const vendorsRoot = "vendors"

type VendorViewModel struct {
	*listVM[models.VendorData]
}

func NewVendorViewModel(s store.Store) *VendorViewModel {
	return &VendorViewModel{
		listVM: newListVM(s, "vendors", vendorValid, vendorSearchFields),
	}
}

func vendorValid(v models.VendorData) bool { return v.Email != "" }

func vendorSearchFields(v models.VendorData) []string {
	return []string{v.FirstName, v.LastName, v.CompanyName, v.Email, v.Phone, v.Address, v.FacilityName}
}

// FetchVendors narrows by activity tokens in filter ("active"/"inactive"),
// a keyword search over every string field, and an optional facility name.
func (vm *VendorViewModel) FetchVendors(filter, searchQuery, facilityName string) {
	var activeOnly, inactiveOnly bool
	for _, token := range Keywords(filter) {
		switch token {
		case "active":
			activeOnly = true
		case "inactive":
			inactiveOnly = true
		}
	}
	keep := func(v models.VendorData) bool {
		if activeOnly && !inactiveOnly && !v.IsActive {
			return false
		}
		if inactiveOnly && !activeOnly && v.IsActive {
			return false
		}
		if facilityName != "" && !strings.EqualFold(v.FacilityName, facilityName) {
			return false
		}
		return true
	}
	vm.fetch(vendorsRoot, false, Keywords(searchQuery), keep)
}

func (vm *VendorViewModel) AddVendor(ctx context.Context, vendor models.VendorData, onSuccess func(models.VendorData), onError func(error)) {
	existing, err := vm.Store.QueryEqual(ctx, vendorsRoot, "email", vendor.Email)
	if err != nil {
		onError(err)
		return
	}
	if len(existing) > 0 {
		onError(fmt.Errorf("vendor with email %s already exists", vendor.Email))
		return
	}
	key := vm.Store.GenerateKey(vendorsRoot)
	if err := vm.Store.Write(ctx, vendorsRoot+"/"+key, vendor); err != nil {
		onError(err)
		return
	}
	onSuccess(vendor)
}

// UpdateVendor overwrites the record addressed by the vendor's email. The
// email lookup and the write are two steps; a concurrent delete in between
// reports not found.
func (vm *VendorViewModel) UpdateVendor(ctx context.Context, vendor models.VendorData, onSuccess func(models.VendorData), onError func(error)) {
	key, err := vm.resolveKey(ctx, vendor.Email)
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, vendorsRoot+"/"+key, vendor); err != nil {
		onError(err)
		return
	}
	onSuccess(vendor)
}

func (vm *VendorViewModel) DeleteVendor(ctx context.Context, email string, onSuccess func(), onError func(error)) {
	key, err := vm.resolveKey(ctx, email)
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Delete(ctx, vendorsRoot+"/"+key); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

// ToggleVendorStatus flips isActive optimistically: when the vendor is in
// the published list, the list is updated before the write is confirmed and
// rolled back to the pre-toggle value when the write fails. A vendor outside
// the published list (no fetch ran, or the filter excluded it) is read
// straight from the store instead.
func (vm *VendorViewModel) ToggleVendorStatus(ctx context.Context, email string, onSuccess func(models.VendorData), onError func(error)) {
	key, err := vm.resolveKey(ctx, email)
	if err != nil {
		onError(err)
		return
	}

	before := vm.Data.Get()
	after := make([]models.VendorData, len(before))
	copy(after, before)

	var toggled *models.VendorData
	for i := range after {
		if strings.EqualFold(after[i].Email, email) {
			after[i].IsActive = !after[i].IsActive
			toggled = &after[i]
			break
		}
	}

	if toggled == nil {
		snap, err := vm.Store.Read(ctx, vendorsRoot+"/"+key)
		if err != nil {
			onError(err)
			return
		}
		var vendor models.VendorData
		if err := snap.Decode(&vendor); err != nil {
			onError(err)
			return
		}
		vendor.IsActive = !vendor.IsActive
		if err := vm.Store.Write(ctx, vendorsRoot+"/"+key, vendor); err != nil {
			onError(err)
			return
		}
		onSuccess(vendor)
		return
	}

	vm.Data.Set(after)
	if err := vm.Store.Write(ctx, vendorsRoot+"/"+key, *toggled); err != nil {
		vm.Data.Set(before)
		onError(err)
		return
	}
	onSuccess(*toggled)
}

func (vm *VendorViewModel) resolveKey(ctx context.Context, email string) (string, error) {
	matches, err := vm.Store.QueryEqual(ctx, vendorsRoot, "email", email)
	if err != nil {
		return "", err
	}
	for key := range matches {
		return key, nil
	}
	return "", fmt.Errorf("vendor not found")
}
