package model

import "time"

// DeviceVerification is the verification store's record for one device id.
// Its absence means "not verified".
type DeviceVerification struct {
	DeviceID      string     `json:"device_id" gorm:"primaryKey;size:64"`
	TokenVerified bool       `json:"token_verified" gorm:"not null;default:false"`
	VerifiedAt    *time.Time `json:"verified_at"` // NULL = not yet verified
	CreatedAt     time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsVerified checks if the device completed the external verification
func (d *DeviceVerification) IsVerified() bool {
	return d.TokenVerified
}
