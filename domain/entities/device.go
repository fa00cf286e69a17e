package entities

import (
	"errors"
	"time"
)

// Device represents a kiosk or tablet allowed to open a readback connection
type Device struct {
	ID           string    `json:"id"`
	SerialNumber string    `json:"serial_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate validates the device data
func (d *Device) Validate() error {
	if d.ID == "" {
		return errors.New("id is required")
	}
	if d.SerialNumber == "" {
		return errors.New("serial number is required")
	}
	return nil
}
