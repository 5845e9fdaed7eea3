package models

type ContactData struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
	Role  string `bson:"role" json:"role"`
}

type LocationData struct {
	Barangay string   `bson:"barangay" json:"barangay"`
	Streets  []string `bson:"streets" json:"streets"`
}
