package viewmodel

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

// failingStore passes everything through except writes, which fail.
type failingStore struct {
	store.Store
	writeErr error
}

func (f *failingStore) Write(ctx context.Context, path string, value interface{}) error {
	return f.writeErr
}

func addVendor(t *testing.T, vm *VendorViewModel, vendor models.VendorData) {
	t.Helper()
	vm.AddVendor(context.Background(), vendor,
		func(models.VendorData) {},
		func(err error) { t.Fatalf("AddVendor: %v", err) },
	)
}

func TestAddVendorRejectsDuplicateEmail(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewVendorViewModel(s)

	addVendor(t, vm, models.VendorData{Email: "seed@farm.com", CompanyName: "Seeds Inc", IsActive: true})

	called := false
	vm.AddVendor(context.Background(), models.VendorData{Email: "seed@farm.com", CompanyName: "Other"},
		func(models.VendorData) { t.Fatal("duplicate email must be rejected") },
		func(err error) { called = true },
	)
	if !called {
		t.Fatal("onError not called")
	}
}

func TestFetchVendorsActiveFilter(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewVendorViewModel(s)
	defer vm.Close()

	addVendor(t, vm, models.VendorData{Email: "a@farm.com", CompanyName: "Alpha", IsActive: true})
	addVendor(t, vm, models.VendorData{Email: "b@farm.com", CompanyName: "Beta", IsActive: false})

	vm.FetchVendors("active", "", "")
	awaitKind(t, vm.State, KindSuccess)
	vendors := vm.Data.Get()
	if len(vendors) != 1 || vendors[0].CompanyName != "Alpha" {
		t.Errorf("active vendors = %+v", vendors)
	}

	vm.FetchVendors("inactive", "", "")
	awaitKind(t, vm.State, KindSuccess)
	vendors = vm.Data.Get()
	if len(vendors) != 1 || vendors[0].CompanyName != "Beta" {
		t.Errorf("inactive vendors = %+v", vendors)
	}
}

func TestToggleVendorStatus(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewVendorViewModel(s)
	defer vm.Close()

	addVendor(t, vm, models.VendorData{Email: "a@farm.com", CompanyName: "Alpha", IsActive: true})
	vm.FetchVendors("", "", "")
	awaitKind(t, vm.State, KindSuccess)

	var toggled models.VendorData
	vm.ToggleVendorStatus(context.Background(), "a@farm.com",
		func(v models.VendorData) { toggled = v },
		func(err error) { t.Fatalf("ToggleVendorStatus: %v", err) },
	)
	if toggled.IsActive {
		t.Error("toggle must flip IsActive off")
	}
}

func TestToggleVendorStatusWithoutFetch(t *testing.T) {
	s := store.NewMemoryStore()
	seeder := NewVendorViewModel(s)
	addVendor(t, seeder, models.VendorData{Email: "a@farm.com", CompanyName: "Alpha", IsActive: true})

	// A fresh view model has an empty published list; the toggle must still
	// find the record in the store.
	vm := NewVendorViewModel(s)
	var toggled models.VendorData
	vm.ToggleVendorStatus(context.Background(), "a@farm.com",
		func(v models.VendorData) { toggled = v },
		func(err error) { t.Fatalf("ToggleVendorStatus: %v", err) },
	)
	if toggled.IsActive {
		t.Error("toggle must flip IsActive off")
	}

	matches, err := s.QueryEqual(context.Background(), "vendors", "email", "a@farm.com")
	if err != nil || len(matches) != 1 {
		t.Fatalf("QueryEqual: %v, matches %d", err, len(matches))
	}
	for _, raw := range matches {
		var stored models.VendorData
		if err := json.Unmarshal(raw, &stored); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if stored.IsActive {
			t.Error("flip not persisted")
		}
	}
}

func TestToggleVendorStatusRollsBackOnWriteFailure(t *testing.T) {
	backing := store.NewMemoryStore()
	vm := NewVendorViewModel(backing)
	defer vm.Close()

	addVendor(t, vm, models.VendorData{Email: "a@farm.com", CompanyName: "Alpha", IsActive: true})
	vm.FetchVendors("", "", "")
	awaitKind(t, vm.State, KindSuccess)

	// Swap in a store whose writes fail; reads and queries still work.
	writeErr := errors.New("write refused")
	vm.Store = &failingStore{Store: backing, writeErr: writeErr}

	published := vm.Data.Get()
	if len(published) != 1 || !published[0].IsActive {
		t.Fatalf("precondition: %+v", published)
	}

	var got error
	vm.ToggleVendorStatus(context.Background(), "a@farm.com",
		func(models.VendorData) { t.Fatal("write failure must not report success") },
		func(err error) { got = err },
	)
	if !errors.Is(got, writeErr) {
		t.Errorf("err = %v, want the write error", got)
	}

	// The optimistic flip was rolled back.
	published = vm.Data.Get()
	if len(published) != 1 || !published[0].IsActive {
		t.Errorf("rollback failed, data = %+v", published)
	}
}

func TestToggleUnknownVendor(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewVendorViewModel(s)

	called := false
	vm.ToggleVendorStatus(context.Background(), "nobody@farm.com",
		func(models.VendorData) { t.Fatal("unexpected success") },
		func(err error) { called = true },
	)
	if !called {
		t.Fatal("onError not called")
	}
}
