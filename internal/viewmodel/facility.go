package viewmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

const facilitiesRoot = "facilities"

// FacilityViewModel manages the cooperative facilities. A facility lives at
// facilities/<lower-cased name>; membership is the plain email list on the
// record, edited under a store transaction.
type FacilityViewModel struct {
	*listVM[models.FacilityData]
}

func NewFacilityViewModel(s store.Store) *FacilityViewModel {
	return &FacilityViewModel{
		listVM: newListVM(s, "facilities", facilityValid, facilitySearchFields),
	}
}

func facilityValid(f models.FacilityData) bool { return f.Name != "" }

func facilitySearchFields(f models.FacilityData) []string {
	fields := []string{f.Name}
	return append(fields, f.Emails...)
}

func facilityPath(name string) string {
	return facilitiesRoot + "/" + strings.ToLower(name)
}

// FetchFacilities filters by keywords; memberEmail keeps only facilities the
// given user belongs to.
func (vm *FacilityViewModel) FetchFacilities(keywords, memberEmail string) {
	keep := func(f models.FacilityData) bool {
		if memberEmail == "" {
			return true
		}
		for _, e := range f.Emails {
			if strings.EqualFold(e, memberEmail) {
				return true
			}
		}
		return false
	}
	vm.fetch(facilitiesRoot, false, Keywords(keywords), keep)
}

func (vm *FacilityViewModel) AddFacility(ctx context.Context, facility models.FacilityData, onSuccess func(models.FacilityData), onError func(error)) {
	snap, err := vm.Store.Read(ctx, facilityPath(facility.Name))
	if err != nil {
		onError(err)
		return
	}
	if snap.Exists() {
		onError(fmt.Errorf("facility %s already exists", facility.Name))
		return
	}
	if facility.Emails == nil {
		facility.Emails = []string{}
	}
	if err := vm.Store.Write(ctx, facilityPath(facility.Name), facility); err != nil {
		onError(err)
		return
	}
	onSuccess(facility)
}

// UpdateSettings patches the collection/payment flags without touching the
// membership list. This is the one mutation that is a partial update rather
// than a whole-record overwrite, so it runs as a transaction.
func (vm *FacilityViewModel) UpdateSettings(ctx context.Context, name string, pickup, delivery, cash, gcash bool, onSuccess func(models.FacilityData), onError func(error)) {
	var updated models.FacilityData
	err := vm.Store.RunAtomic(ctx, facilityPath(name), func(current json.RawMessage) (interface{}, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		var facility models.FacilityData
		if err := json.Unmarshal(current, &facility); err != nil {
			return nil, err
		}
		facility.PickupEnabled = pickup
		facility.DeliveryEnabled = delivery
		facility.CashEnabled = cash
		facility.GcashEnabled = gcash
		updated = facility
		return facility, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		onError(fmt.Errorf("facility not found"))
		return
	}
	if err != nil {
		onError(err)
		return
	}
	onSuccess(updated)
}

// SetIcon stores the uploaded icon URL on the facility record.
func (vm *FacilityViewModel) SetIcon(ctx context.Context, name, iconURL string, onSuccess func(models.FacilityData), onError func(error)) {
	var updated models.FacilityData
	err := vm.Store.RunAtomic(ctx, facilityPath(name), func(current json.RawMessage) (interface{}, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		var facility models.FacilityData
		if err := json.Unmarshal(current, &facility); err != nil {
			return nil, err
		}
		facility.IconURL = iconURL
		updated = facility
		return facility, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		onError(fmt.Errorf("facility not found"))
		return
	}
	if err != nil {
		onError(err)
		return
	}
	onSuccess(updated)
}

// AddMember appends a user email to the facility membership list. Duplicate
// adds are no-ops.
func (vm *FacilityViewModel) AddMember(ctx context.Context, name, email string, onSuccess func(models.FacilityData), onError func(error)) {
	vm.editMembers(ctx, name, onSuccess, onError, func(emails []string) []string {
		for _, e := range emails {
			if strings.EqualFold(e, email) {
				return emails
			}
		}
		return append(emails, email)
	})
}

func (vm *FacilityViewModel) RemoveMember(ctx context.Context, name, email string, onSuccess func(models.FacilityData), onError func(error)) {
	vm.editMembers(ctx, name, onSuccess, onError, func(emails []string) []string {
		kept := emails[:0]
		for _, e := range emails {
			if !strings.EqualFold(e, email) {
				kept = append(kept, e)
			}
		}
		return kept
	})
}

func (vm *FacilityViewModel) editMembers(ctx context.Context, name string, onSuccess func(models.FacilityData), onError func(error), edit func([]string) []string) {
	var updated models.FacilityData
	err := vm.Store.RunAtomic(ctx, facilityPath(name), func(current json.RawMessage) (interface{}, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		var facility models.FacilityData
		if err := json.Unmarshal(current, &facility); err != nil {
			return nil, err
		}
		facility.Emails = edit(facility.Emails)
		if facility.Emails == nil {
			facility.Emails = []string{}
		}
		updated = facility
		return facility, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		onError(fmt.Errorf("facility not found"))
		return
	}
	if err != nil {
		onError(err)
		return
	}
	onSuccess(updated)
}

func (vm *FacilityViewModel) DeleteFacility(ctx context.Context, name string, onSuccess func(), onError func(error)) {
	if err := vm.Store.Delete(ctx, facilityPath(name)); err != nil {
		onError(err)
		return
	}
	onSuccess()
}
