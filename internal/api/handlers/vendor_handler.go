package handlers

import (
	"net/http"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

type VendorHandler struct {
	Store store.Store
}

// GetVendors lists suppliers. filter accepts "active" or "inactive"; staff
// scoped to a facility see only its vendors.
func (h *VendorHandler) GetVendors(c *gin.Context) {
	vm := viewmodel.NewVendorViewModel(h.Store)
	defer vm.Close()

	facility := c.Query("facility")
	if facility == "" {
		facility = c.GetString("user_facility")
	}

	vm.FetchVendors(c.Query("filter"), c.Query("search"), facility)
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var vendor models.VendorData
	if err := c.ShouldBindJSON(&vendor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if vendor.FacilityName == "" {
		vendor.FacilityName = c.GetString("user_facility")
	}

	vm := viewmodel.NewVendorViewModel(h.Store)
	vm.AddVendor(c.Request.Context(), vendor,
		func(v models.VendorData) {
			c.JSON(http.StatusCreated, v)
		},
		func(err error) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		},
	)
}

func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	var vendor models.VendorData
	if err := c.ShouldBindJSON(&vendor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vendor.Email = c.Param("email")

	vm := viewmodel.NewVendorViewModel(h.Store)
	vm.UpdateVendor(c.Request.Context(), vendor,
		func(v models.VendorData) {
			c.JSON(http.StatusOK, v)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	vm := viewmodel.NewVendorViewModel(h.Store)
	vm.DeleteVendor(c.Request.Context(), c.Param("email"),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

// ToggleVendorStatus flips a vendor between active and inactive.
func (h *VendorHandler) ToggleVendorStatus(c *gin.Context) {
	vm := viewmodel.NewVendorViewModel(h.Store)
	vm.ToggleVendorStatus(c.Request.Context(), c.Param("email"),
		func(v models.VendorData) {
			c.JSON(http.StatusOK, v)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}
