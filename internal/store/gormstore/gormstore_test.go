package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MarkoPoloResearchLab/parking/pkg/parking"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// A pooled second connection would see a different :memory: database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func mustStoreRecordID(t *testing.T, raw string) parking.RecordID {
	t.Helper()
	id, err := parking.NewRecordID(raw)
	if err != nil {
		t.Fatalf("record id: %v", err)
	}
	return id
}

func createTestLot(t *testing.T, store *Store, name string, rate float64) parking.ParkingLot {
	t.Helper()
	lot, err := store.CreateLot(context.Background(), parking.ParkingLot{
		Name:         name,
		Address:      "1 Main St",
		PricePerHour: rate,
		TotalSpots:   25,
	})
	if err != nil {
		t.Fatalf("create lot: %v", err)
	}
	return lot
}

func createTestReservation(t *testing.T, store *Store, lotID string) parking.Reservation {
	t.Helper()
	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	reservation, err := store.CreateReservation(context.Background(), parking.Reservation{
		ParkingLotID: lotID,
		CustomerName: "Ada Lovelace",
		CarPlate:     "AB-123",
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
		TotalPrice:   20,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return reservation
}

func TestLotCreateThenGetRoundTrips(t *testing.T) {
	store := newTestStore(t)

	created := createTestLot(t, store, "Central Garage", 12.5)
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if created.HasCCTV {
		t.Fatalf("expected hasCCTV to default to false")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected store-maintained timestamps")
	}

	fetched, err := store.GetLot(context.Background(), mustStoreRecordID(t, created.ID))
	if err != nil {
		t.Fatalf("get lot: %v", err)
	}
	if fetched.Name != created.Name || fetched.Address != created.Address || fetched.PricePerHour != created.PricePerHour || fetched.TotalSpots != created.TotalSpots {
		t.Fatalf("round trip mismatch: created=%+v fetched=%+v", created, fetched)
	}
}

func TestGetLotNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetLot(context.Background(), mustStoreRecordID(t, uuid.NewString()))
	if !errors.Is(err, parking.ErrLotNotFound) {
		t.Fatalf("expected ErrLotNotFound, got %v", err)
	}
}

func TestUpdateLotReplacesAllFields(t *testing.T) {
	store := newTestStore(t)
	created := createTestLot(t, store, "Central Garage", 12.5)
	created.HasCCTV = true
	if _, err := store.UpdateLot(context.Background(), mustStoreRecordID(t, created.ID), created); err != nil {
		t.Fatalf("enable cctv: %v", err)
	}

	updated, err := store.UpdateLot(context.Background(), mustStoreRecordID(t, created.ID), parking.ParkingLot{
		Name:         "North Garage",
		Address:      "2 Side St",
		PricePerHour: 8,
		TotalSpots:   10,
		HasCCTV:      false,
	})
	if err != nil {
		t.Fatalf("update lot: %v", err)
	}
	if updated.Name != "North Garage" || updated.PricePerHour != 8 || updated.TotalSpots != 10 {
		t.Fatalf("unexpected updated lot: %+v", updated)
	}
	if updated.HasCCTV {
		t.Fatalf("expected full replace to reset hasCCTV to false")
	}
}

func TestUpdateLotNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.UpdateLot(context.Background(), mustStoreRecordID(t, uuid.NewString()), parking.ParkingLot{
		Name:         "North Garage",
		Address:      "2 Side St",
		PricePerHour: 8,
		TotalSpots:   10,
	})
	if !errors.Is(err, parking.ErrLotNotFound) {
		t.Fatalf("expected ErrLotNotFound, got %v", err)
	}
}

func TestDeleteLotNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.DeleteLot(context.Background(), mustStoreRecordID(t, uuid.NewString()))
	if !errors.Is(err, parking.ErrLotNotFound) {
		t.Fatalf("expected ErrLotNotFound, got %v", err)
	}
}

func TestListLotsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	first := createTestLot(t, store, "First", 5)
	time.Sleep(10 * time.Millisecond)
	second := createTestLot(t, store, "Second", 5)
	time.Sleep(10 * time.Millisecond)
	third := createTestLot(t, store, "Third", 5)

	lots, err := store.ListLots(context.Background())
	if err != nil {
		t.Fatalf("list lots: %v", err)
	}
	if len(lots) != 3 {
		t.Fatalf("expected 3 lots, got %d", len(lots))
	}
	if lots[0].ID != third.ID || lots[1].ID != second.ID || lots[2].ID != first.ID {
		t.Fatalf("expected newest-first ordering, got %v %v %v", lots[0].Name, lots[1].Name, lots[2].Name)
	}
}

func TestCreateLotRejectsConstraintViolations(t *testing.T) {
	store := newTestStore(t)
	testCases := []struct {
		name string
		lot  parking.ParkingLot
	}{
		{
			name: "negative price",
			lot:  parking.ParkingLot{Name: "Lot", Address: "Addr", PricePerHour: -1, TotalSpots: 5},
		},
		{
			name: "zero spots",
			lot:  parking.ParkingLot{Name: "Lot", Address: "Addr", PricePerHour: 1, TotalSpots: 0},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := store.CreateLot(context.Background(), testCase.lot)
			if !errors.Is(err, parking.ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestReservationProjectionFollowsLotLifecycle(t *testing.T) {
	store := newTestStore(t)
	lot := createTestLot(t, store, "Central Garage", 10)
	reservation := createTestReservation(t, store, lot.ID)

	fetched, err := store.GetReservation(context.Background(), mustStoreRecordID(t, reservation.ID))
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if fetched.Lot == nil {
		t.Fatalf("expected lot projection")
	}
	if fetched.Lot.Name != "Central Garage" || fetched.Lot.PricePerHour != 10 {
		t.Fatalf("unexpected projection: %+v", fetched.Lot)
	}

	if err := store.DeleteLot(context.Background(), mustStoreRecordID(t, lot.ID)); err != nil {
		t.Fatalf("delete lot: %v", err)
	}

	orphan, err := store.GetReservation(context.Background(), mustStoreRecordID(t, reservation.ID))
	if err != nil {
		t.Fatalf("get reservation after lot delete: %v", err)
	}
	if orphan.ParkingLotID != lot.ID {
		t.Fatalf("expected stale lot reference to persist, got %q", orphan.ParkingLotID)
	}
	if orphan.Lot != nil {
		t.Fatalf("expected nil projection for orphan reference")
	}
}

func TestListReservationsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	lot := createTestLot(t, store, "Central Garage", 10)
	first := createTestReservation(t, store, lot.ID)
	time.Sleep(10 * time.Millisecond)
	second := createTestReservation(t, store, lot.ID)

	listed, err := store.ListReservations(context.Background())
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(listed))
	}
	if listed[0].ID != second.ID || listed[1].ID != first.ID {
		t.Fatalf("expected newest-first ordering")
	}
	if listed[0].Lot == nil || listed[1].Lot == nil {
		t.Fatalf("expected lot projection on every row")
	}
}

func TestUpdateReservationReplacesAllFields(t *testing.T) {
	store := newTestStore(t)
	lot := createTestLot(t, store, "Central Garage", 10)
	otherLot := createTestLot(t, store, "North Garage", 30)
	reservation := createTestReservation(t, store, lot.ID)

	start := time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC)
	updated, err := store.UpdateReservation(context.Background(), mustStoreRecordID(t, reservation.ID), parking.Reservation{
		ParkingLotID: otherLot.ID,
		CustomerName: "Grace Hopper",
		CarPlate:     "XY-999",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		TotalPrice:   30,
	})
	if err != nil {
		t.Fatalf("update reservation: %v", err)
	}
	if updated.ParkingLotID != otherLot.ID || updated.CustomerName != "Grace Hopper" || updated.TotalPrice != 30 {
		t.Fatalf("unexpected updated reservation: %+v", updated)
	}
	if !updated.StartTime.Equal(start) {
		t.Fatalf("expected start time %v, got %v", start, updated.StartTime)
	}
}

func TestUpdateReservationNotFound(t *testing.T) {
	store := newTestStore(t)
	lot := createTestLot(t, store, "Central Garage", 10)
	start := time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC)
	_, err := store.UpdateReservation(context.Background(), mustStoreRecordID(t, uuid.NewString()), parking.Reservation{
		ParkingLotID: lot.ID,
		CustomerName: "Grace Hopper",
		CarPlate:     "XY-999",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		TotalPrice:   10,
	})
	if !errors.Is(err, parking.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}

func TestDeleteReservation(t *testing.T) {
	store := newTestStore(t)
	lot := createTestLot(t, store, "Central Garage", 10)
	reservation := createTestReservation(t, store, lot.ID)

	if err := store.DeleteReservation(context.Background(), mustStoreRecordID(t, reservation.ID)); err != nil {
		t.Fatalf("delete reservation: %v", err)
	}
	_, err := store.GetReservation(context.Background(), mustStoreRecordID(t, reservation.ID))
	if !errors.Is(err, parking.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound after delete, got %v", err)
	}
	if err := store.DeleteReservation(context.Background(), mustStoreRecordID(t, reservation.ID)); !errors.Is(err, parking.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound on second delete, got %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	txFailure := errors.New("abort")

	err := store.WithTx(context.Background(), func(ctx context.Context, txStore parking.Store) error {
		if _, createErr := txStore.CreateLot(ctx, parking.ParkingLot{
			Name:         "Rollback Garage",
			Address:      "Nowhere",
			PricePerHour: 1,
			TotalSpots:   1,
		}); createErr != nil {
			return createErr
		}
		return txFailure
	})
	if !errors.Is(err, txFailure) {
		t.Fatalf("expected transaction failure, got %v", err)
	}

	lots, err := store.ListLots(context.Background())
	if err != nil {
		t.Fatalf("list lots: %v", err)
	}
	if len(lots) != 0 {
		t.Fatalf("expected rollback to discard the lot, got %d rows", len(lots))
	}
}
