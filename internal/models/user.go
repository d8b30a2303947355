package models

// Address is a postal address embedded into users and snapshotted onto orders.
type Address struct {
	DoorNumber string `json:"door_number"`
	Street     string `json:"street"`
	Area       string `json:"area"`
	District   string `json:"district"`
	State      string `json:"state"`
	Pincode    string `json:"pincode"`
}

// User represents a customer account. PasswordHash is empty for accounts
// created through Google signup or the passwordless OTP flow.
type User struct {
	BaseModel
	Name         string  `json:"name"`
	Email        string  `gorm:"uniqueIndex" json:"email"`
	PasswordHash string  `json:"-"`
	Address      Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Phone        string  `json:"phone"`
	IsAdmin      bool    `json:"is_admin"`
	IsBlocked    bool    `json:"is_blocked"`
	GoogleSignup bool    `json:"google_signup"`
}
