package models

// OrderedProduct is the denormalized product reference carried inside an
// order. Matching back to inventory is by name and type, case-insensitive;
// there is no foreign key.
type OrderedProduct struct {
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Type     string `bson:"type" json:"type"` // e.g. "Vegetable", "Meat"
}
