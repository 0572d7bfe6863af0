package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParkingLot mirrors the parking_lots table. The numeric invariants are
// enforced here redundantly with the request validator.
type ParkingLot struct {
	LotID        string    `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null"`
	Address      string    `gorm:"not null"`
	PricePerHour float64   `gorm:"not null;check:chk_parking_lots_price,price_per_hour >= 0"`
	TotalSpots   int64     `gorm:"not null;check:chk_parking_lots_spots,total_spots >= 1"`
	HasCCTV      bool      `gorm:"column:has_cctv;not null;default:false"`
	CreatedAt    time.Time `gorm:"not null;index:idx_parking_lots_created"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (ParkingLot) TableName() string { return "parking_lots" }

func (lot *ParkingLot) BeforeCreate(tx *gorm.DB) error {
	if lot.LotID == "" {
		lot.LotID = uuid.NewString()
	}
	return nil
}

// Reservation mirrors the reservations table. ParkingLotID is an indexed
// lookup key, not a foreign-key constraint: deleting a lot leaves its
// reservations behind with a dangling reference.
type Reservation struct {
	ReservationID string    `gorm:"type:uuid;primaryKey"`
	ParkingLotID  string    `gorm:"type:uuid;not null;index:idx_reservations_lot"`
	CustomerName  string    `gorm:"not null"`
	CarPlate      string    `gorm:"not null"`
	StartTime     time.Time `gorm:"not null"`
	EndTime       time.Time `gorm:"not null"`
	TotalPrice    float64   `gorm:"not null;check:chk_reservations_price,total_price >= 0"`
	CreatedAt     time.Time `gorm:"not null;index:idx_reservations_created"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (Reservation) TableName() string { return "reservations" }

func (reservation *Reservation) BeforeCreate(tx *gorm.DB) error {
	if reservation.ReservationID == "" {
		reservation.ReservationID = uuid.NewString()
	}
	return nil
}
