package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/s3"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductHandler struct {
	Store      store.Store
	S3Uploader *s3.Uploader
}

// GetProducts lists the storefront catalogue. Clients see only in-store
// products; staff pass inStore=false to see everything.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	vm := viewmodel.NewProductViewModel(h.Store)
	defer vm.Close()

	minPrice, _ := strconv.ParseFloat(c.DefaultQuery("minPrice", "0"), 64)
	maxPrice, _ := strconv.ParseFloat(c.DefaultQuery("maxPrice", "0"), 64)
	inStoreOnly := c.DefaultQuery("inStore", "true") != "false"

	vm.FetchProducts(viewmodel.ProductFilter{
		Keywords:    c.Query("search"),
		Type:        c.Query("type"),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		InStoreOnly: inStoreOnly,
	})
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.ProductData
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewProductViewModel(h.Store)
	vm.AddProduct(c.Request.Context(), product,
		func(p models.ProductData) {
			c.JSON(http.StatusCreated, p)
		},
		func(err error) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		},
	)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var product models.ProductData
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product.Name = c.Param("name")

	vm := viewmodel.NewProductViewModel(h.Store)
	vm.UpdateProduct(c.Request.Context(), product,
		func(p models.ProductData) {
			c.JSON(http.StatusOK, p)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	vm := viewmodel.NewProductViewModel(h.Store)
	vm.DeleteProduct(c.Request.Context(), c.Param("name"),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

// UploadProductImage pushes the uploaded file to S3 and stores the URL on
// the product record.
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	if h.S3Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	name := c.Param("name")
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("products/%s-%s", uuid.New().String()[:8], fileHeader.Filename)
	url, err := h.S3Uploader.UploadImage(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image", "details": err.Error()})
		return
	}

	vm := viewmodel.NewProductViewModel(h.Store)
	product, found := findProduct(vm, name)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	product.ImageURL = url
	vm.UpdateProduct(c.Request.Context(), product,
		func(p models.ProductData) {
			c.JSON(http.StatusOK, gin.H{"imageURL": url, "product": p})
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}

// findProduct pulls one record out of a settled catalogue fetch.
func findProduct(vm *viewmodel.ProductViewModel, name string) (models.ProductData, bool) {
	vm.FetchProducts(viewmodel.ProductFilter{Keywords: name})
	defer vm.Close()
	list, state, err := collectList(vm.State, vm.Data)
	if err != nil || state.Kind == viewmodel.KindError {
		return models.ProductData{}, false
	}
	for _, p := range list {
		if p.Name == name {
			return p, true
		}
	}
	return models.ProductData{}, false
}
