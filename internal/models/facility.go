package models

// FacilityData is a cooperative processing/selling location. The lower-cased
// name acts as the key; membership is a plain list of user emails edited
// under a store transaction.
type FacilityData struct {
	Name            string   `bson:"name" json:"name"`
	Emails          []string `bson:"emails" json:"emails"`
	IconURL         string   `bson:"iconUrl,omitempty" json:"iconUrl,omitempty"`
	PickupEnabled   bool     `bson:"pickupEnabled" json:"pickupEnabled"`
	DeliveryEnabled bool     `bson:"deliveryEnabled" json:"deliveryEnabled"`
	CashEnabled     bool     `bson:"cashEnabled" json:"cashEnabled"`
	GcashEnabled    bool     `bson:"gcashEnabled" json:"gcashEnabled"`
}
