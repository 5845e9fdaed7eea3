package viewmodel

import (
	"context"
	"testing"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

func addToCart(t *testing.T, vm *CartViewModel, item models.CartItem) {
	t.Helper()
	vm.AddToCart(context.Background(), item,
		func() {},
		func(err error) { t.Fatalf("AddToCart: %v", err) },
	)
}

func TestAddToCartMergesByProduct(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewCartViewModel(s, clientUser)
	defer vm.Close()

	addToCart(t, vm, models.CartItem{ProductName: "Tomato", Quantity: 2, Price: 40})
	addToCart(t, vm, models.CartItem{ProductName: "tomato", Quantity: 3, Price: 40})
	addToCart(t, vm, models.CartItem{ProductName: "Onion", Quantity: 1, Price: 25})

	vm.FetchCart()
	awaitKind(t, vm.State, KindSuccess)

	items := vm.Data.Get()
	if len(items) != 2 {
		t.Fatalf("cart = %+v, want 2 lines", items)
	}
	for _, item := range items {
		if item.ProductName == "Tomato" && item.Quantity != 5 {
			t.Errorf("Tomato quantity = %d, want merged 5", item.Quantity)
		}
	}
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewCartViewModel(s, clientUser)
	defer vm.Close()

	addToCart(t, vm, models.CartItem{ProductName: "Tomato", Quantity: 2, Price: 40})

	vm.UpdateQuantity(context.Background(), "Tomato", 7,
		func() {},
		func(err error) { t.Fatalf("UpdateQuantity: %v", err) },
	)

	vm.FetchCart()
	awaitKind(t, vm.State, KindSuccess)
	if items := vm.Data.Get(); len(items) != 1 || items[0].Quantity != 7 {
		t.Fatalf("cart = %+v", items)
	}

	vm.RemoveFromCart(context.Background(), "Tomato",
		func() {},
		func(err error) { t.Fatalf("RemoveFromCart: %v", err) },
	)
	awaitKind(t, vm.State, KindEmpty)
}

func TestClearCart(t *testing.T) {
	s := store.NewMemoryStore()
	vm := NewCartViewModel(s, clientUser)

	addToCart(t, vm, models.CartItem{ProductName: "Tomato", Quantity: 2})
	addToCart(t, vm, models.CartItem{ProductName: "Onion", Quantity: 1})

	vm.ClearCart(context.Background(),
		func() {},
		func(err error) { t.Fatalf("ClearCart: %v", err) },
	)

	snap, err := s.Read(context.Background(), "carts/"+clientUser.UID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if snap.Exists() {
		t.Error("cart subtree survived the clear")
	}
}

func TestCartsAreScopedPerUser(t *testing.T) {
	s := store.NewMemoryStore()
	mine := NewCartViewModel(s, clientUser)
	theirs := NewCartViewModel(s, coopUser)
	defer mine.Close()

	addToCart(t, mine, models.CartItem{ProductName: "Tomato", Quantity: 2})
	addToCart(t, theirs, models.CartItem{ProductName: "Onion", Quantity: 9})

	mine.FetchCart()
	awaitKind(t, mine.State, KindSuccess)
	items := mine.Data.Get()
	if len(items) != 1 || items[0].ProductName != "Tomato" {
		t.Errorf("cart = %+v, want only this user's items", items)
	}
}
