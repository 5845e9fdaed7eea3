package viewmodel

import (
	"context"
	"encoding/json"
	"strings"

	"farm-coop-api-server/internal/auth"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

const cartsRoot = "carts"

// CartViewModel manages the signed-in client's cart. The cart lives under the
// user's own subtree, so every operation is scoped to one account.
type CartViewModel struct {
	*listVM[models.CartItem]
	user auth.CurrentUser
}

func NewCartViewModel(s store.Store, user auth.CurrentUser) *CartViewModel {
	return &CartViewModel{
		listVM: newListVM(s, "carts", cartValid, cartSearchFields),
		user:   user,
	}
}

func cartValid(c models.CartItem) bool { return c.ProductName != "" }

func cartSearchFields(c models.CartItem) []string {
	return []string{c.ProductName, c.Type}
}

func (vm *CartViewModel) path() string { return cartsRoot + "/" + vm.user.UID }

func (vm *CartViewModel) FetchCart() {
	vm.fetch(vm.path(), false, nil, nil)
}

// AddToCart merges by product name: adding a product already in the cart
// bumps its quantity instead of creating a second line.
func (vm *CartViewModel) AddToCart(ctx context.Context, item models.CartItem, onSuccess func(), onError func(error)) {
	key, err := vm.resolveKey(ctx, item.ProductName)
	if err == nil {
		err = vm.Store.RunAtomic(ctx, vm.path()+"/"+key, func(current json.RawMessage) (interface{}, error) {
			existing, ok := decodeOne[models.CartItem](current, "carts", cartValid)
			if !ok {
				return item, nil
			}
			existing.Quantity += item.Quantity
			return existing, nil
		})
		if err != nil {
			onError(err)
			return
		}
		onSuccess()
		return
	}
	key = vm.Store.GenerateKey(vm.path())
	if err := vm.Store.Write(ctx, vm.path()+"/"+key, item); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

func (vm *CartViewModel) UpdateQuantity(ctx context.Context, productName string, quantity int, onSuccess func(), onError func(error)) {
	key, err := vm.resolveKey(ctx, productName)
	if err != nil {
		onError(err)
		return
	}
	err = vm.Store.RunAtomic(ctx, vm.path()+"/"+key, func(current json.RawMessage) (interface{}, error) {
		item, ok := decodeOne[models.CartItem](current, "carts", cartValid)
		if !ok {
			return nil, store.ErrNotFound
		}
		item.Quantity = quantity
		return item, nil
	})
	if err != nil {
		onError(notFoundError("cart item", err))
		return
	}
	onSuccess()
}

func (vm *CartViewModel) RemoveFromCart(ctx context.Context, productName string, onSuccess func(), onError func(error)) {
	key, err := vm.resolveKey(ctx, productName)
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

// ClearCart drops the whole cart subtree, used after an order is placed.
func (vm *CartViewModel) ClearCart(ctx context.Context, onSuccess func(), onError func(error)) {
	if err := vm.Store.Delete(ctx, vm.path()); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

func (vm *CartViewModel) resolveKey(ctx context.Context, productName string) (string, error) {
	snap, err := vm.Store.Read(ctx, vm.path())
	if err != nil {
		return "", notFoundError("cart item", err)
	}
	for key, raw := range snap.Children() {
		item, ok := decodeOne[models.CartItem](raw, "carts", cartValid)
		if ok && strings.EqualFold(item.ProductName, productName) {
			return key, nil
		}
	}
	return "", store.ErrNotFound
}
