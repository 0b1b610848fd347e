package domain

import "time"

// User is an account that owns cats.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Cat is the subject whose litterbox visits are analyzed.
type Cat struct {
	ID        string
	OwnerID   string
	Name      string
	Breed     string
	Age       int
	CreatedAt time.Time
}

// Litterbox belongs to exactly one cat.
type Litterbox struct {
	ID        string
	CatID     string
	Name      string
	CreatedAt time.Time
}

// EdgeDevice is the sensor unit mounted on a litterbox. Its ID is assigned
// by the device vendor and supplied by the caller at registration time.
type EdgeDevice struct {
	ID          string
	LitterboxID string
	DeviceName  string
	DeviceType  string
	CreatedAt   time.Time
}
