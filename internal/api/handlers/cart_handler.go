package handlers

import (
	"net/http"
	"strconv"

	"farm-coop-api-server/internal/api/middleware"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

// CartHandler serves the signed-in client's cart.
type CartHandler struct {
	Store store.Store
}

func (h *CartHandler) GetCart(c *gin.Context) {
	vm := viewmodel.NewCartViewModel(h.Store, middleware.CurrentUser(c))
	defer vm.Close()

	vm.FetchCart()
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var item models.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be positive"})
		return
	}

	vm := viewmodel.NewCartViewModel(h.Store, middleware.CurrentUser(c))
	vm.AddToCart(c.Request.Context(), item,
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Added to cart"})
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a positive number"})
		return
	}

	vm := viewmodel.NewCartViewModel(h.Store, middleware.CurrentUser(c))
	vm.UpdateQuantity(c.Request.Context(), c.Param("product"), quantity,
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	vm := viewmodel.NewCartViewModel(h.Store, middleware.CurrentUser(c))
	vm.RemoveFromCart(c.Request.Context(), c.Param("product"),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	vm := viewmodel.NewCartViewModel(h.Store, middleware.CurrentUser(c))
	vm.ClearCart(c.Request.Context(),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}
