package viewmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"farm-coop-api-server/internal/auth"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

// ItemViewModel manages one farmer's inventory, keyed under the farmer's
// store uid. The item name is the de facto secondary key within the list.
type ItemViewModel struct {
	*listVM[models.ItemData]
	user auth.CurrentUser
}

func NewItemViewModel(s store.Store, user auth.CurrentUser) *ItemViewModel {
	return &ItemViewModel{
		listVM: newListVM(s, "items", itemValid, itemSearchFields),
		user:   user,
	}
}

func itemValid(i models.ItemData) bool { return i.Name != "" }

func itemSearchFields(i models.ItemData) []string {
	return []string{i.Name, i.Type, i.StartSeason, i.EndSeason}
}

func (vm *ItemViewModel) path() string { return itemsRoot + "/" + vm.user.UID }

func (vm *ItemViewModel) FetchItems(keywords string, inStoreOnly bool) {
	keep := func(i models.ItemData) bool {
		return !inStoreOnly || i.IsInStore
	}
	vm.fetch(vm.path(), false, Keywords(keywords), keep)
}

func (vm *ItemViewModel) AddItem(ctx context.Context, item models.ItemData, onSuccess func(models.ItemData), onError func(error)) {
	if _, err := vm.resolveKey(ctx, item.Name); err == nil {
		onError(fmt.Errorf("item %s already exists", item.Name))
		return
	}
	key := vm.Store.GenerateKey(vm.path())
	if err := vm.Store.Write(ctx, vm.path()+"/"+key, item); err != nil {
		onError(err)
		return
	}
	onSuccess(item)
}

func (vm *ItemViewModel) UpdateItem(ctx context.Context, item models.ItemData, onSuccess func(models.ItemData), onError func(error)) {
	key, err := vm.resolveKey(ctx, item.Name)
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, vm.path()+"/"+key, item); err != nil {
		onError(err)
		return
	}
	onSuccess(item)
}

func (vm *ItemViewModel) DeleteItem(ctx context.Context, name string, onSuccess func(), onError func(error)) {
	key, err := vm.resolveKey(ctx, name)
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Delete(ctx, vm.path()+"/"+key); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

// resolveKey matches the item name case-insensitively, like the rest of the
// name-addressed lookups.
func (vm *ItemViewModel) resolveKey(ctx context.Context, name string) (string, error) {
	snap, err := vm.Store.Read(ctx, vm.path())
	if err != nil {
		return "", err
	}
	for key, raw := range snap.Children() {
		var item models.ItemData
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if strings.EqualFold(item.Name, name) {
			return key, nil
		}
	}
	return "", fmt.Errorf("item not found")
}
