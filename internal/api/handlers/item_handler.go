package handlers

import (
	"net/http"

	"farm-coop-api-server/internal/api/middleware"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

// ItemHandler serves the signed-in farmer's own produce inventory.
type ItemHandler struct {
	Store store.Store
}

func (h *ItemHandler) GetItems(c *gin.Context) {
	vm := viewmodel.NewItemViewModel(h.Store, middleware.CurrentUser(c))
	defer vm.Close()

	vm.FetchItems(c.Query("search"), c.Query("inStore") == "true")
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	var item models.ItemData
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewItemViewModel(h.Store, middleware.CurrentUser(c))
	vm.AddItem(c.Request.Context(), item,
		func(i models.ItemData) {
			c.JSON(http.StatusCreated, i)
		},
		func(err error) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		},
	)
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
	var item models.ItemData
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item.Name = c.Param("name")

	vm := viewmodel.NewItemViewModel(h.Store, middleware.CurrentUser(c))
	vm.UpdateItem(c.Request.Context(), item,
		func(i models.ItemData) {
			c.JSON(http.StatusOK, i)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	vm := viewmodel.NewItemViewModel(h.Store, middleware.CurrentUser(c))
	vm.DeleteItem(c.Request.Context(), c.Param("name"),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}
