package handlers

import (
	"net/http"
	"time"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

// SalesHandler serves the coop back-office records: sales and vendor
// purchase orders.
type SalesHandler struct {
	Store store.Store
}

func (h *SalesHandler) GetSales(c *gin.Context) {
	vm := viewmodel.NewSaleViewModel(h.Store)
	defer vm.Close()

	from, _ := time.Parse(time.RFC3339, c.Query("from"))
	to, _ := time.Parse(time.RFC3339, c.Query("to"))

	facility := c.Query("facility")
	if facility == "" {
		facility = c.GetString("user_facility")
	}

	vm.FetchSales(viewmodel.SaleFilter{
		Keywords:     c.Query("search"),
		FacilityName: facility,
		From:         from,
		To:           to,
	})
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *SalesHandler) CreateSale(c *gin.Context) {
	var sale models.SalesData
	if err := c.ShouldBindJSON(&sale); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if sale.FacilityName == "" {
		sale.FacilityName = c.GetString("user_facility")
	}

	vm := viewmodel.NewSaleViewModel(h.Store)
	vm.AddSale(c.Request.Context(), sale,
		func(s models.SalesData) {
			c.JSON(http.StatusCreated, s)
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}

func (h *SalesHandler) UpdateSale(c *gin.Context) {
	var sale models.SalesData
	if err := c.ShouldBindJSON(&sale); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sale.SalesNumber = c.Param("number")

	vm := viewmodel.NewSaleViewModel(h.Store)
	vm.UpdateSale(c.Request.Context(), sale,
		func(s models.SalesData) {
			c.JSON(http.StatusOK, s)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *SalesHandler) DeleteSale(c *gin.Context) {
	vm := viewmodel.NewSaleViewModel(h.Store)
	vm.DeleteSale(c.Request.Context(), c.Param("number"),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *SalesHandler) GetPurchaseOrders(c *gin.Context) {
	vm := viewmodel.NewPurchaseOrderViewModel(h.Store)
	defer vm.Close()

	facility := c.Query("facility")
	if facility == "" {
		facility = c.GetString("user_facility")
	}

	vm.FetchPurchaseOrders(c.Query("search"), c.Query("status"), facility)
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *SalesHandler) CreatePurchaseOrder(c *gin.Context) {
	var po models.PurchaseOrder
	if err := c.ShouldBindJSON(&po); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if po.FacilityName == "" {
		po.FacilityName = c.GetString("user_facility")
	}

	vm := viewmodel.NewPurchaseOrderViewModel(h.Store)
	vm.AddPurchaseOrder(c.Request.Context(), po,
		func(p models.PurchaseOrder) {
			c.JSON(http.StatusCreated, p)
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}

func (h *SalesHandler) UpdatePurchaseOrder(c *gin.Context) {
	var po models.PurchaseOrder
	if err := c.ShouldBindJSON(&po); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	po.PurchaseNumber = c.Param("number")

	vm := viewmodel.NewPurchaseOrderViewModel(h.Store)
	vm.UpdatePurchaseOrder(c.Request.Context(), po,
		func(p models.PurchaseOrder) {
			c.JSON(http.StatusOK, p)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *SalesHandler) DeletePurchaseOrder(c *gin.Context) {
	vm := viewmodel.NewPurchaseOrderViewModel(h.Store)
	vm.DeletePurchaseOrder(c.Request.Context(), c.Param("number"),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Purchase order deleted successfully"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}
