package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"farm-coop-api-server/internal/api/middleware"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/socket"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Store store.Store
	Hub   *socket.Hub
}

type PlaceOrderRequest struct {
	Product  models.OrderedProduct `json:"product" binding:"required"`
	Barangay string                `json:"barangay" binding:"required"`
	Street   string                `json:"street" binding:"required"`
}

type DecideOrderRequest struct {
	Decision string `json:"decision" binding:"required"` // "accept" or "reject"
	Farmers  []struct {
		UID  string `json:"uid"`
		Name string `json:"name"`
	} `json:"farmers"`
	Reason string `json:"reason"`
}

type AdvanceStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	FarmerName string `json:"farmerName"`
}

// PlaceOrder creates a pending order for the signed-in client.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Product.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be positive"})
		return
	}

	vm := viewmodel.NewOrderViewModel(h.Store, middleware.CurrentUser(c))
	vm.PlaceOrder(c.Request.Context(),
		models.OrderData{
			OrderData: req.Product,
			Barangay:  req.Barangay,
			Street:    req.Street,
		},
		func(order models.OrderData) {
			h.notifyAll("NEW_ORDER", order, "A new order is waiting for review")
			c.JSON(http.StatusCreated, order)
		},
		func(err error) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		},
	)
}

// GetMyOrders lists the signed-in client's own orders.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)
	vm := viewmodel.NewOrderViewModel(h.Store, user)
	defer vm.Close()

	vm.FetchOrders(viewmodel.OrderFilter{
		ClientUID: user.UID,
		Keywords:  c.Query("search"),
		Statuses:  c.Query("status"),
	})
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

// GetOrders lists orders across all clients, for staff screens.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	vm := viewmodel.NewOrderViewModel(h.Store, middleware.CurrentUser(c))
	defer vm.Close()

	vm.FetchOrders(viewmodel.OrderFilter{
		Keywords: c.Query("search"),
		Statuses: c.Query("status"),
		Farmer:   c.Query("farmer"),
	})
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

// DecideOrder records the accept or reject decision on a pending order.
func (h *OrderHandler) DecideOrder(c *gin.Context) {
	orderID := c.Param("id")

	var req DecideOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewOrderViewModel(h.Store, middleware.CurrentUser(c))
	switch req.Decision {
	case "accept":
		farmers := make([]viewmodel.FarmerRef, len(req.Farmers))
		for i, f := range req.Farmers {
			farmers[i] = viewmodel.FarmerRef{UID: f.UID, Name: f.Name}
		}
		// A farmer accepting without naming anyone fulfills the order alone.
		if len(farmers) == 0 && c.GetString("user_role") == "farmer" {
			name, err := h.callerName(c)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			farmers = []viewmodel.FarmerRef{{UID: c.GetString("user_uid"), Name: name}}
		}
		vm.AcceptOrder(c.Request.Context(), orderID, farmers,
			func(order models.OrderData) {
				h.notifyClient(order, "Your order has been accepted")
				c.JSON(http.StatusOK, order)
			},
			func(err error) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			},
		)
	case "reject":
		vm.RejectOrder(c.Request.Context(), orderID, req.Reason,
			func(order models.OrderData) {
				h.notifyClient(order, "Your order has been rejected: "+order.RejectReason)
				c.JSON(http.StatusOK, order)
			},
			func(err error) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			},
		)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be accept or reject"})
	}
}

// AdvanceStatus moves an order, or one farmer's share of it, forward.
// A farmer always moves their own share; the name comes from their user
// record, never from the request body. Staff may target any farmer's entry
// with farmerName, or advance the whole order by omitting it.
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vm := viewmodel.NewOrderViewModel(h.Store, middleware.CurrentUser(c))
	onSuccess := func(order models.OrderData) {
		h.notifyClient(order, fmt.Sprintf("Order %s is now %s", order.OrderID, order.Status))
		c.JSON(http.StatusOK, order)
	}
	onError := func(err error) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	}

	if c.GetString("user_role") == "farmer" {
		name, err := h.callerName(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		vm.AdvanceAsFarmer(c.Request.Context(), orderID, name, req.Status, onSuccess, onError)
		return
	}
	if req.FarmerName != "" {
		vm.AdvanceFarmerStatus(c.Request.Context(), orderID, req.FarmerName, req.Status, onSuccess, onError)
		return
	}
	vm.AdvanceOrderStatus(c.Request.Context(), orderID, req.Status, onSuccess, onError)
}

// CancelOrder lets a client withdraw an order that has not completed. The
// lookup is scoped to the caller's own orders.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID := c.Param("id")

	vm := viewmodel.NewOrderViewModel(h.Store, middleware.CurrentUser(c))
	vm.CancelOrder(c.Request.Context(), orderID,
		func(order models.OrderData) {
			h.notifyAll("ORDER_CANCELLED", order, "Order was cancelled by the client")
			c.JSON(http.StatusOK, order)
		},
		func(err error) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		},
	)
}

// callerName reads the signed-in user's record and returns their display
// name, the one recorded in fulfilled-by entries.
func (h *OrderHandler) callerName(c *gin.Context) (string, error) {
	snap, err := h.Store.Read(c.Request.Context(), "users/"+c.GetString("user_uid"))
	if err != nil {
		return "", err
	}
	var user models.UserData
	if err := snap.Decode(&user); err != nil {
		return "", err
	}
	return strings.TrimSpace(user.Firstname + " " + user.Lastname), nil
}

// DeleteOrder removes an order record entirely. Admin only.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID := c.Param("id")

	vm := viewmodel.NewOrderViewModel(h.Store, middleware.CurrentUser(c))
	vm.DeleteOrder(c.Request.Context(), orderID,
		func() {
			c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
		},
		func(err error) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		},
	)
}

// GetTransactions lists the append-only order audit trail.
func (h *OrderHandler) GetTransactions(c *gin.Context) {
	vm := viewmodel.NewTransactionViewModel(h.Store)
	defer vm.Close()

	vm.FetchTransactions(c.Query("search"))
	list, state, err := collectList(vm.State, vm.Data)
	respondList(c, list, state, err)
}

type orderNotification struct {
	Type    string `json:"type"`
	OrderID string `json:"orderID"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *OrderHandler) notifyClient(order models.OrderData, message string) {
	if h.Hub == nil {
		return
	}
	payload, err := json.Marshal(orderNotification{
		Type:    "ORDER_UPDATE",
		OrderID: order.OrderID,
		Status:  order.Status,
		Message: message,
	})
	if err != nil {
		return
	}
	_ = h.Hub.Send(order.Client, payload)
}

func (h *OrderHandler) notifyAll(kind string, order models.OrderData, message string) {
	if h.Hub == nil {
		return
	}
	payload, err := json.Marshal(orderNotification{
		Type:    kind,
		OrderID: order.OrderID,
		Status:  order.Status,
		Message: message,
	})
	if err != nil {
		return
	}
	h.Hub.Broadcast(payload)
}
