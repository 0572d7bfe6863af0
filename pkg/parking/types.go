package parking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordID identifies a stored record. IDs are assigned by the store as
// canonical UUID strings; anything else is rejected before business logic.
type RecordID struct {
	value string
}

// NewRecordID validates and normalizes a record identifier.
func NewRecordID(raw string) (RecordID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RecordID{}, fmt.Errorf("%w: empty value", ErrInvalidRecordID)
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return RecordID{}, fmt.Errorf("%w: %q", ErrInvalidRecordID, trimmed)
	}
	return RecordID{value: parsed.String()}, nil
}

// IsWellFormedRecordID reports whether raw would pass NewRecordID.
func IsWellFormedRecordID(raw string) bool {
	_, err := NewRecordID(raw)
	return err == nil
}

// String returns the normalized identifier.
func (id RecordID) String() string {
	return id.value
}

// ParkingLot is a stored parking-lot record.
type ParkingLot struct {
	ID           string
	Name         string
	Address      string
	PricePerHour float64
	TotalSpots   int64
	HasCCTV      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reservation is a stored reservation record. ParkingLotID references a
// ParkingLot by id; the lot does not track its reservations.
type Reservation struct {
	ID           string
	ParkingLotID string
	CustomerName string
	CarPlate     string
	StartTime    time.Time
	EndTime      time.Time
	TotalPrice   float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LotSummary is the read-only projection of a referenced lot attached to
// reservation reads. It is a convenience copy, not the record of truth.
type LotSummary struct {
	Name         string
	Address      string
	PricePerHour float64
}

// ReservationWithLot pairs a reservation with its lot projection. Lot is nil
// when the referenced record no longer exists.
type ReservationWithLot struct {
	Reservation
	Lot *LotSummary
}

// Store is the persistence contract used by Service.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	CreateLot(ctx context.Context, lot ParkingLot) (ParkingLot, error)
	ListLots(ctx context.Context) ([]ParkingLot, error)
	GetLot(ctx context.Context, id RecordID) (ParkingLot, error)
	UpdateLot(ctx context.Context, id RecordID, lot ParkingLot) (ParkingLot, error)
	DeleteLot(ctx context.Context, id RecordID) error

	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	ListReservations(ctx context.Context) ([]ReservationWithLot, error)
	GetReservation(ctx context.Context, id RecordID) (ReservationWithLot, error)
	UpdateReservation(ctx context.Context, id RecordID, reservation Reservation) (Reservation, error)
	DeleteReservation(ctx context.Context, id RecordID) error
}
