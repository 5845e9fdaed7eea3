package handlers

import (
	"net/http"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the small reference collections: vegetable kinds,
// contact entries and barangay locations.
type CatalogHandler struct {
	Store store.Store
}

func (h *CatalogHandler) GetVegetables(c *gin.Context) {
	vm := viewmodel.NewVegetableViewModel(h.Store)
	defer vm.Close()

	vm.FetchVegetables(c.Query("search"))
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *CatalogHandler) CreateVegetable(c *gin.Context) {
	var veg models.VegetableData
	if err := c.ShouldBindJSON(&veg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewVegetableViewModel(h.Store)
	vm.AddVegetable(c.Request.Context(), veg,
		func() {
			c.JSON(http.StatusCreated, veg)
		},
		func(err error) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		},
	)
}

func (h *CatalogHandler) DeleteVegetable(c *gin.Context) {
	vm := viewmodel.NewVegetableViewModel(h.Store)
	vm.DeleteVegetable(c.Request.Context(), c.Param("name"),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Vegetable deleted successfully"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *CatalogHandler) GetContacts(c *gin.Context) {
	vm := viewmodel.NewContactViewModel(h.Store)
	defer vm.Close()

	vm.FetchContacts(c.Query("search"))
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *CatalogHandler) CreateContact(c *gin.Context) {
	var contact models.ContactData
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewContactViewModel(h.Store)
	vm.AddContact(c.Request.Context(), contact,
		func() {
			c.JSON(http.StatusCreated, contact)
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}

func (h *CatalogHandler) GetLocations(c *gin.Context) {
	vm := viewmodel.NewLocationViewModel(h.Store)
	defer vm.Close()

	vm.FetchLocations(c.Query("search"))
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *CatalogHandler) CreateLocation(c *gin.Context) {
	var loc models.LocationData
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewLocationViewModel(h.Store)
	vm.AddLocation(c.Request.Context(), loc,
		func() {
			c.JSON(http.StatusCreated, loc)
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}
