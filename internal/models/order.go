package models

import (
	"time"
)

// FulfilledBy is a per-farmer sub-record of an order that was split across
// multiple farmers. Each entry advances through the status vocabulary
// independently of its siblings.
type FulfilledBy struct {
	FarmerName string `bson:"farmerName" json:"farmerName"`
	Status     string `bson:"status" json:"status"`
}

type OrderData struct {
	OrderID      string         `bson:"orderId" json:"orderId"` // store-generated, e.g. "ORD-6f1d2a9c"
	OrderDate    time.Time      `bson:"orderDate" json:"orderDate"`
	Status       string         `bson:"status" json:"status"`
	OrderData    OrderedProduct `bson:"orderData" json:"orderData"`
	FulfilledBy  []FulfilledBy  `bson:"fulfilledBy,omitempty" json:"fulfilledBy,omitempty"`
	Client       string         `bson:"client" json:"client"` // client email
	Barangay     string         `bson:"barangay" json:"barangay"`
	Street       string         `bson:"street" json:"street"`
	RejectReason string         `bson:"rejectReason,omitempty" json:"rejectReason,omitempty"`
}
