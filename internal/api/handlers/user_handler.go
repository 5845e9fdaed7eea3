package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"farm-coop-api-server/config"
	"farm-coop-api-server/internal/auth"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Store store.Store
	Cfg   config.Config
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	Role      string `json:"role"`
	Barangay  string `json:"barangay"`
	Street    string `json:"street"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account. Self-registration always gets the client
// role; staff accounts are created by an admin through CreateUser.
func (h *UserHandler) Register(c *gin.Context) {
	h.createUser(c, false)
}

// CreateUser is the admin variant of Register and honors the role field.
func (h *UserHandler) CreateUser(c *gin.Context) {
	h.createUser(c, true)
}

func (h *UserHandler) createUser(c *gin.Context, allowRole bool) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := "client"
	if allowRole && req.Role != "" {
		role = req.Role
	}

	user := models.UserData{
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      role,
		Barangay:  req.Barangay,
		Street:    req.Street,
	}

	if problems := viewmodel.ValidateUser(user, req.Password); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": problems})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	user.Password = hash

	vm := viewmodel.NewUserViewModel(h.Store)
	vm.AddUser(c.Request.Context(), user,
		func(uid string, u models.UserData) {
			u.Password = ""
			c.JSON(http.StatusCreated, gin.H{"uid": uid, "user": u})
		},
		func(err error) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		},
	)
}

// Login verifies the credentials and issues a JWT.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewUserViewModel(h.Store)
	uid, user, err := vm.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	facility := ""
	if user.Role == "coop" {
		facility = h.facilityOf(c, user.Email)
	}

	expiration, _ := time.ParseDuration(h.Cfg.JWT.Expiration)
	token, err := auth.GenerateJWT(uid, user.Email, user.Role, facility, expiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"uid":   uid,
		"user":  user,
	})
}

// facilityOf finds the facility a staff email belongs to, or "".
func (h *UserHandler) facilityOf(c *gin.Context, email string) string {
	snap, err := h.Store.Read(c.Request.Context(), "facilities")
	if err != nil {
		return ""
	}
	for _, raw := range snap.Children() {
		var facility models.FacilityData
		if err := json.Unmarshal(raw, &facility); err != nil {
			continue
		}
		for _, member := range facility.Emails {
			if strings.EqualFold(member, email) {
				return facility.Name
			}
		}
	}
	return ""
}

// GetUsers lists accounts, optionally narrowed by keywords and role.
func (h *UserHandler) GetUsers(c *gin.Context) {
	vm := viewmodel.NewUserViewModel(h.Store)
	defer vm.Close()

	vm.FetchUsers(c.Query("search"), c.Query("role"))
	list, state, err := collectList(vm.State, vm.Data)
	for i := range list {
		list[i].Password = ""
	}
	respondList(c, list, state, err)
}

// UpdateUser overwrites a user record addressed by email. The stored
// password hash is preserved unless a new password is supplied.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewUserViewModel(h.Store)
	_, existing, err := vm.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user := models.UserData{
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      existing.Role,
		Barangay:  req.Barangay,
		Street:    req.Street,
		Password:  existing.Password,
	}
	if req.Role != "" && c.GetString("user_role") == "admin" {
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.Password = hash
	}

	vm.UpdateUser(c.Request.Context(), user,
		func(u models.UserData) {
			u.Password = ""
			c.JSON(http.StatusOK, gin.H{"user": u})
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}
