package viewmodel

import (
	"context"
	"fmt"
	"strings"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

const (
	vegetablesRoot = "vegetables"
	contactsRoot   = "contacts"
	locationsRoot  = "locations"
)

// VegetableViewModel backs the reference catalogue of known vegetable kinds
// that farmers pick from when listing produce.
type VegetableViewModel struct {
	*listVM[models.VegetableData]
}

func NewVegetableViewModel(s store.Store) *VegetableViewModel {
	return &VegetableViewModel{
		listVM: newListVM(s, "vegetables", vegetableValid, vegetableSearchFields),
	}
}

func vegetableValid(v models.VegetableData) bool { return v.Name != "" }

func vegetableSearchFields(v models.VegetableData) []string {
	return []string{v.Name, v.Type}
}

func (vm *VegetableViewModel) FetchVegetables(keywords string) {
	vm.fetch(vegetablesRoot, false, Keywords(keywords), nil)
}

func (vm *VegetableViewModel) AddVegetable(ctx context.Context, veg models.VegetableData, onSuccess func(), onError func(error)) {
	key := vegetableKey(veg.Name)
	snap, err := vm.Store.Read(ctx, vegetablesRoot+"/"+key)
	if err == nil && snap.Exists() {
		onError(fmt.Errorf("vegetable %s already exists", veg.Name))
		return
	}
	if err := vm.Store.Write(ctx, vegetablesRoot+"/"+key, veg); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

func (vm *VegetableViewModel) DeleteVegetable(ctx context.Context, name string, onSuccess func(), onError func(error)) {
	if err := vm.Store.Delete(ctx, vegetablesRoot+"/"+vegetableKey(name)); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

func vegetableKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ContactViewModel holds the cooperative's public contact list.
type ContactViewModel struct {
	*listVM[models.ContactData]
}

func NewContactViewModel(s store.Store) *ContactViewModel {
	return &ContactViewModel{
		listVM: newListVM(s, "contacts", contactValid, contactSearchFields),
	}
}

func contactValid(c models.ContactData) bool { return c.Name != "" }

func contactSearchFields(c models.ContactData) []string {
	return []string{c.Name, c.Phone, c.Role}
}

func (vm *ContactViewModel) FetchContacts(keywords string) {
	vm.fetch(contactsRoot, false, Keywords(keywords), nil)
}

func (vm *ContactViewModel) AddContact(ctx context.Context, contact models.ContactData, onSuccess func(), onError func(error)) {
	key := vm.Store.GenerateKey(contactsRoot)
	if err := vm.Store.Write(ctx, contactsRoot+"/"+key, contact); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

// LocationViewModel serves the barangay and street picklists used by
// registration and delivery forms. Keyed by lower-cased barangay name, like
// facilities.
type LocationViewModel struct {
	*listVM[models.LocationData]
}

func NewLocationViewModel(s store.Store) *LocationViewModel {
	return &LocationViewModel{
		listVM: newListVM(s, "locations", locationValid, locationSearchFields),
	}
}

func locationValid(l models.LocationData) bool { return l.Barangay != "" }

func locationSearchFields(l models.LocationData) []string {
	return append([]string{l.Barangay}, l.Streets...)
}

func (vm *LocationViewModel) FetchLocations(keywords string) {
	vm.fetch(locationsRoot, false, Keywords(keywords), nil)
}

func (vm *LocationViewModel) AddLocation(ctx context.Context, loc models.LocationData, onSuccess func(), onError func(error)) {
	key := strings.ToLower(strings.TrimSpace(loc.Barangay))
	if err := vm.Store.Write(ctx, locationsRoot+"/"+key, loc); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

// Streets returns the street names for one barangay from the last published
// list, for form autofill without a second fetch.
func (vm *LocationViewModel) Streets(barangay string) []string {
	for _, loc := range vm.Data.Get() {
		if strings.EqualFold(loc.Barangay, barangay) {
			return loc.Streets
		}
	}
	return nil
}
