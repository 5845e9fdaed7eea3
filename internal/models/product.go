package models

// ProductData is a product offered through a facility's store front.
type ProductData struct {
	Name        string  `bson:"name" json:"name"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	PriceKg     float64 `bson:"priceKg" json:"priceKg"`
	Type        string  `bson:"type" json:"type"`
	StartSeason string  `bson:"startSeason" json:"startSeason"` // month name, e.g. "June"
	EndSeason   string  `bson:"endSeason" json:"endSeason"`
	IsInStore   bool    `bson:"isInStore" json:"isInStore"` // retail-visible vs online-only stock
	ImageURL    string  `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}

// ItemData is a farmer's inventory record. The name acts as the secondary
// key within one farmer's item list.
type ItemData struct {
	Name        string  `bson:"name" json:"name"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Price       float64 `bson:"price" json:"price"`
	Type        string  `bson:"type" json:"type"`
	StartSeason string  `bson:"startSeason" json:"startSeason"`
	EndSeason   string  `bson:"endSeason" json:"endSeason"`
	IsInStore   bool    `bson:"isInStore" json:"isInStore"`
}

type VegetableData struct {
	Name string `bson:"name" json:"name"`
	Type string `bson:"type" json:"type"`
}

// CartItem is one line of a client's cart.
type CartItem struct {
	ProductName string  `bson:"productName" json:"productName"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Price       float64 `bson:"price" json:"price"`
	Type        string  `bson:"type" json:"type"`
}
