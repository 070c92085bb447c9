package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Machinery is a piece of owned equipment.
type Machinery struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Category     string     `json:"category" db:"category"`
	Model        string     `json:"model,omitempty" db:"model"`
	Brand        string     `json:"brand,omitempty" db:"brand"`
	SerialNo     string     `json:"serialNo,omitempty" db:"serial_no"`
	PurchaseDate *time.Time `json:"purchaseDate" db:"purchase_date"`
	Notes        string     `json:"notes,omitempty" db:"notes"`
}

// MachineryService is a maintenance record for a machine.
type MachineryService struct {
	ID          int64            `json:"id" db:"id"`
	MachineryID int64            `json:"machineryId" db:"machinery_id"`
	ServiceDate time.Time        `json:"serviceDate" db:"service_date"`
	ServiceType string           `json:"serviceType" db:"service_type"`
	Cost        *decimal.Decimal `json:"cost" db:"cost"`
	Vendor      string           `json:"vendor,omitempty" db:"vendor"`
	Notes       string           `json:"notes,omitempty" db:"notes"`
}
