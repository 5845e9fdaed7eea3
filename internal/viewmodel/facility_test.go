package viewmodel

import (
	"context"
	"testing"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

func addFacility(t *testing.T, vm *FacilityViewModel, facility models.FacilityData) {
	t.Helper()
	vm.AddFacility(context.Background(), facility,
		func(models.FacilityData) {},
		func(err error) { t.Fatalf("AddFacility: %v", err) },
	)
}

func TestAddFacilityRejectsDuplicateName(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewFacilityViewModel(s)

	addFacility(t, vm, models.FacilityData{Name: "Poblacion Hub"})

	called := false
	vm.AddFacility(context.Background(), models.FacilityData{Name: "Poblacion Hub"},
		func(models.FacilityData) { t.Fatal("duplicate name must be rejected") },
		func(err error) { called = true },
	)
	if !called {
		t.Fatal("onError not called")
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewFacilityViewModel(s)

	addFacility(t, vm, models.FacilityData{Name: "Poblacion Hub"})

	add := func() models.FacilityData {
		var out models.FacilityData
		vm.AddMember(context.Background(), "Poblacion Hub", "staff@farm.com",
			func(f models.FacilityData) { out = f },
			func(err error) { t.Fatalf("AddMember: %v", err) },
		)
		return out
	}

	first := add()
	if len(first.Emails) != 1 {
		t.Fatalf("Emails = %v, want one member", first.Emails)
	}
	second := add()
	if len(second.Emails) != 1 {
		t.Errorf("Emails = %v, duplicate add must be a no-op", second.Emails)
	}
}

func TestRemoveMember(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewFacilityViewModel(s)

	addFacility(t, vm, models.FacilityData{Name: "Poblacion Hub", Emails: []string{"a@farm.com", "b@farm.com"}})

	var got models.FacilityData
	vm.RemoveMember(context.Background(), "Poblacion Hub", "A@FARM.COM",
		func(f models.FacilityData) { got = f },
		func(err error) { t.Fatalf("RemoveMember: %v", err) },
	)
	if len(got.Emails) != 1 || got.Emails[0] != "b@farm.com" {
		t.Errorf("Emails = %v, want only b@farm.com", got.Emails)
	}
}

func TestUpdateSettingsKeepsMembers(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewFacilityViewModel(s)

	addFacility(t, vm, models.FacilityData{
		Name:   "Poblacion Hub",
		Emails: []string{"staff@farm.com"},
	})

	var got models.FacilityData
	vm.UpdateSettings(context.Background(), "Poblacion Hub", true, false, true, true,
		func(f models.FacilityData) { got = f },
		func(err error) { t.Fatalf("UpdateSettings: %v", err) },
	)
	if !got.PickupEnabled || got.DeliveryEnabled || !got.CashEnabled || !got.GcashEnabled {
		t.Errorf("flags = %+v", got)
	}
	if len(got.Emails) != 1 {
		t.Errorf("Emails = %v, settings patch must not touch members", got.Emails)
	}
}

func TestUpdateSettingsMissingFacility(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewFacilityViewModel(s)

	called := false
	vm.UpdateSettings(context.Background(), "Nowhere", true, true, true, true,
		func(models.FacilityData) { t.Fatal("unexpected success") },
		func(err error) { called = true },
	)
	if !called {
		t.Fatal("onError not called")
	}
}

func TestFetchFacilitiesByMember(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewFacilityViewModel(s)
	defer vm.Close()

	addFacility(t, vm, models.FacilityData{Name: "North Hub", Emails: []string{"north@farm.com"}})
	addFacility(t, vm, models.FacilityData{Name: "South Hub", Emails: []string{"south@farm.com"}})

	vm.FetchFacilities("", "south@farm.com")
	awaitKind(t, vm.State, KindSuccess)

	facilities := vm.Data.Get()
	if len(facilities) != 1 || facilities[0].Name != "South Hub" {
		t.Errorf("facilities = %+v", facilities)
	}
}
