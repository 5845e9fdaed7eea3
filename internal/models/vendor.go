package models

import "time"

type VendorData struct {
	FirstName    string `bson:"firstName" json:"firstName"`
	LastName     string `bson:"lastName" json:"lastName"`
	CompanyName  string `bson:"companyName" json:"companyName"`
	Email        string `bson:"email" json:"email"` // business key
	Phone        string `bson:"phone" json:"phone"`
	Address      string `bson:"address" json:"address"`
	FacilityName string `bson:"facilityName" json:"facilityName"`
	IsActive     bool   `bson:"isActive" json:"isActive"`
}

type PurchaseOrderItem struct {
	ItemName string  `bson:"itemName" json:"itemName"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Rate     float64 `bson:"rate" json:"rate"`
}

type PurchaseOrder struct {
	PurchaseNumber string              `bson:"purchaseNumber" json:"purchaseNumber"` // business key, e.g. "PO-3a91c4e7"
	VendorEmail    string              `bson:"vendorEmail" json:"vendorEmail"`
	FacilityName   string              `bson:"facilityName" json:"facilityName"`
	DateAdded      time.Time           `bson:"dateAdded" json:"dateAdded"`
	ShippingDate   time.Time           `bson:"shippingDate" json:"shippingDate"`
	Status         string              `bson:"status" json:"status"` // e.g. "pending", "approved", "cancelled"
	Items          []PurchaseOrderItem `bson:"items" json:"items"`
}

type SalesData struct {
	SalesNumber  string    `bson:"salesNumber" json:"salesNumber"` // business key, e.g. "SO-91dfe210"
	Date         time.Time `bson:"date" json:"date"`
	ProductName  string    `bson:"productName" json:"productName"`
	Quantity     int       `bson:"quantity" json:"quantity"`
	Price        float64   `bson:"price" json:"price"`
	FacilityName string    `bson:"facilityName" json:"facilityName"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// TransactionData is the audit record appended alongside order mutations.
type TransactionData struct {
	TransactionID string    `bson:"transactionId" json:"transactionId"`
	Date          time.Time `bson:"date" json:"date"`
	Description   string    `bson:"description" json:"description"`
	Status        string    `bson:"status" json:"status"`
	OrderID       string    `bson:"orderId,omitempty" json:"orderId,omitempty"`
}
