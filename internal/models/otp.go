package models

import "time"

// OtpVerification is one issued passcode for an email address. The newest
// record per email is authoritative; older ones become unverifiable once a
// new code is issued and are purged together on successful verification.
//
// The registration flow additionally snapshots the submitted profile so the
// user record can be created only after the code is confirmed.
type OtpVerification struct {
	BaseModel
	Email     string    `gorm:"index" json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`

	PendingName         string  `json:"-"`
	PendingPasswordHash string  `json:"-"`
	PendingAddress      Address `gorm:"embedded;embeddedPrefix:pending_address_" json:"-"`
	PendingPhone        string  `json:"-"`
	HasPendingProfile   bool    `json:"-"`
}

// VerifiedEmail marks an email as having passed OTP verification recently.
// Backing this by the database rather than process memory keeps multiple
// server instances consistent. Consumed (deleted) by passwordless login.
type VerifiedEmail struct {
	BaseModel
	Email     string    `gorm:"index" json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
