package handlers

import (
	"fmt"
	"net/http"

	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/s3"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacilityHandler struct {
	Store      store.Store
	S3Uploader *s3.Uploader
}

type FacilitySettingsRequest struct {
	PickupEnabled   *bool `json:"pickupEnabled" binding:"required"`
	DeliveryEnabled *bool `json:"deliveryEnabled" binding:"required"`
	CashEnabled     *bool `json:"cashEnabled" binding:"required"`
	GcashEnabled    *bool `json:"gcashEnabled" binding:"required"`
}

type FacilityMemberRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *FacilityHandler) GetFacilities(c *gin.Context) {
	vm := viewmodel.NewFacilityViewModel(h.Store)
	defer vm.Close()

	vm.FetchFacilities(c.Query("search"), c.Query("member"))
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

func (h *FacilityHandler) CreateFacility(c *gin.Context) {
	var facility models.FacilityData
	if err := c.ShouldBindJSON(&facility); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewFacilityViewModel(h.Store)
	vm.AddFacility(c.Request.Context(), facility,
		func(f models.FacilityData) {
			c.JSON(http.StatusCreated, f)
		},
		func(err error) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		},
	)
}

// UpdateSettings patches the four service flags without touching the member
// list or other fields.
func (h *FacilityHandler) UpdateSettings(c *gin.Context) {
	var req FacilitySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewFacilityViewModel(h.Store)
	vm.UpdateSettings(c.Request.Context(), c.Param("name"),
		*req.PickupEnabled, *req.DeliveryEnabled, *req.CashEnabled, *req.GcashEnabled,
		func(f models.FacilityData) {
			c.JSON(http.StatusOK, f)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *FacilityHandler) AddMember(c *gin.Context) {
	var req FacilityMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewFacilityViewModel(h.Store)
	vm.AddMember(c.Request.Context(), c.Param("name"), req.Email,
		func(f models.FacilityData) {
			c.JSON(http.StatusOK, f)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *FacilityHandler) RemoveMember(c *gin.Context) {
	vm := viewmodel.NewFacilityViewModel(h.Store)
	vm.RemoveMember(c.Request.Context(), c.Param("name"), c.Param("email"),
		func(f models.FacilityData) {
			c.JSON(http.StatusOK, f)
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

func (h *FacilityHandler) DeleteFacility(c *gin.Context) {
	vm := viewmodel.NewFacilityViewModel(h.Store)
	vm.DeleteFacility(c.Request.Context(), c.Param("name"),
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Facility deleted successfully"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

// UploadFacilityIcon pushes the facility icon to S3 and stores the URL.
func (h *FacilityHandler) UploadFacilityIcon(c *gin.Context) {
	if h.S3Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	name := c.Param("name")
	fileHeader, err := c.FormFile("icon")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Icon file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("facilities/%s-%s", uuid.New().String()[:8], fileHeader.Filename)
	url, err := h.S3Uploader.UploadImage(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload icon", "details": err.Error()})
		return
	}

	vm := viewmodel.NewFacilityViewModel(h.Store)
	vm.SetIcon(c.Request.Context(), name, url,
		func(f models.FacilityData) {
			c.JSON(http.StatusOK, gin.H{"iconURL": url, "facility": f})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}
