package models

// UserData matches the user document in the store. Role gates which screens
// and subscriptions are active: admin, client, coop, farmer.
type UserData struct {
	Email     string `bson:"email" json:"email"`
	Firstname string `bson:"firstname" json:"firstname"`
	Lastname  string `bson:"lastname" json:"lastname"`
	// Password holds the bcrypt hash. Handlers blank it before responding.
	Password  string `bson:"password" json:"password,omitempty"`
	Role      string `bson:"role" json:"role"`
	Barangay  string `bson:"barangay" json:"barangay"`
	Street    string `bson:"street" json:"street"`
}
