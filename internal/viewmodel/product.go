package viewmodel

import (
	"context"
	"fmt"
	"strings"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

const productsRoot = "products"

type ProductViewModel struct {
	*listVM[models.ProductData]
}

func NewProductViewModel(s store.Store) *ProductViewModel {
	return &ProductViewModel{
		listVM: newListVM(s, "products", productValid, productSearchFields),
	}
}

func productValid(p models.ProductData) bool { return p.Name != "" }

func productSearchFields(p models.ProductData) []string {
	return []string{p.Name, p.Type, p.StartSeason, p.EndSeason}
}

// ProductFilter narrows a fetch: keywords over the string fields plus typed
// price-range and retail-visibility constraints.
type ProductFilter struct {
	Keywords    string
	Type        string
	MinPrice    float64
	MaxPrice    float64 // 0 means no upper bound
	InStoreOnly bool
}

func (vm *ProductViewModel) FetchProducts(f ProductFilter) {
	keep := func(p models.ProductData) bool {
		if f.Type != "" && !strings.EqualFold(p.Type, f.Type) {
			return false
		}
		if p.PriceKg < f.MinPrice {
			return false
		}
		if f.MaxPrice > 0 && p.PriceKg > f.MaxPrice {
			return false
		}
		if f.InStoreOnly && !p.IsInStore {
			return false
		}
		return true
	}
	vm.fetch(productsRoot, false, Keywords(f.Keywords), keep)
}

func (vm *ProductViewModel) AddProduct(ctx context.Context, product models.ProductData, onSuccess func(models.ProductData), onError func(error)) {
	key := vm.Store.GenerateKey(productsRoot)
	if err := vm.Store.Write(ctx, productsRoot+"/"+key, product); err != nil {
		onError(err)
		return
	}
	onSuccess(product)
}

// UpdateProduct overwrites the record addressed by the product name.
func (vm *ProductViewModel) UpdateProduct(ctx context.Context, product models.ProductData, onSuccess func(models.ProductData), onError func(error)) {
	key, err := vm.resolveKey(ctx, product.Name)
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Write(ctx, productsRoot+"/"+key, product); err != nil {
		onError(err)
		return
	}
	onSuccess(product)
}

func (vm *ProductViewModel) DeleteProduct(ctx context.Context, name string, onSuccess func(), onError func(error)) {
	key, err := vm.resolveKey(ctx, name)
	if err != nil {
		onError(err)
		return
	}
	if err := vm.Store.Delete(ctx, productsRoot+"/"+key); err != nil {
		onError(err)
		return
	}
	onSuccess()
}

func (vm *ProductViewModel) resolveKey(ctx context.Context, name string) (string, error) {
	matches, err := vm.Store.QueryEqual(ctx, productsRoot, "name", name)
	if err != nil {
		return "", err
	}
	for key := range matches {
		return key, nil
	}
	return "", fmt.Errorf("product not found")
}
