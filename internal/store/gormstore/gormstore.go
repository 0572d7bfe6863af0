package gormstore

import (
	"context"
	"errors"

	"github.com/MarkoPoloResearchLab/parking/pkg/parking"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgCheckViolationCode    = "23514"
	pgNotNullViolationCode  = "23502"
	sqliteConstraintCode    = 19
	errorOperationStore     = "store"
	errorSubjectLot         = "parking_lot"
	errorSubjectReservation = "reservation"
	errorCodeCreate         = "create"
	errorCodeDelete         = "delete"
	errorCodeGet            = "get"
	errorCodeInvalid        = "invalid"
	errorCodeList           = "list"
	errorCodeUpdate         = "update"
)

// Store implements parking.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema for both record types.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ParkingLot{}, &Reservation{})
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore parking.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) CreateLot(ctx context.Context, lot parking.ParkingLot) (parking.ParkingLot, error) {
	model := ParkingLot{
		Name:         lot.Name,
		Address:      lot.Address,
		PricePerHour: lot.PricePerHour,
		TotalSpots:   lot.TotalSpots,
		HasCCTV:      lot.HasCCTV,
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isConstraintViolation(err) {
		return parking.ParkingLot{}, wrapStoreError(errorSubjectLot, errorCodeInvalid, parking.ErrInvalidRecord)
	}
	if err != nil {
		return parking.ParkingLot{}, wrapStoreError(errorSubjectLot, errorCodeCreate, err)
	}
	return mapParkingLot(model), nil
}

func (store *Store) ListLots(ctx context.Context) ([]parking.ParkingLot, error) {
	var rows []ParkingLot
	err := store.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectLot, errorCodeList, err)
	}
	lots := make([]parking.ParkingLot, 0, len(rows))
	for _, row := range rows {
		lots = append(lots, mapParkingLot(row))
	}
	return lots, nil
}

func (store *Store) GetLot(ctx context.Context, id parking.RecordID) (parking.ParkingLot, error) {
	var model ParkingLot
	err := store.db.WithContext(ctx).
		Where("lot_id = ?", id.String()).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return parking.ParkingLot{}, wrapStoreError(errorSubjectLot, errorCodeGet, parking.ErrLotNotFound)
		}
		return parking.ParkingLot{}, wrapStoreError(errorSubjectLot, errorCodeGet, err)
	}
	return mapParkingLot(model), nil
}

func (store *Store) UpdateLot(ctx context.Context, id parking.RecordID, lot parking.ParkingLot) (parking.ParkingLot, error) {
	result := store.db.WithContext(ctx).
		Model(&ParkingLot{}).
		Where("lot_id = ?", id.String()).
		Select("name", "address", "price_per_hour", "total_spots", "has_cctv", "updated_at").
		Updates(ParkingLot{
			Name:         lot.Name,
			Address:      lot.Address,
			PricePerHour: lot.PricePerHour,
			TotalSpots:   lot.TotalSpots,
			HasCCTV:      lot.HasCCTV,
		})
	if isConstraintViolation(result.Error) {
		return parking.ParkingLot{}, wrapStoreError(errorSubjectLot, errorCodeInvalid, parking.ErrInvalidRecord)
	}
	if result.Error != nil {
		return parking.ParkingLot{}, wrapStoreError(errorSubjectLot, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return parking.ParkingLot{}, wrapStoreError(errorSubjectLot, errorCodeUpdate, parking.ErrLotNotFound)
	}
	return store.GetLot(ctx, id)
}

func (store *Store) DeleteLot(ctx context.Context, id parking.RecordID) error {
	result := store.db.WithContext(ctx).
		Where("lot_id = ?", id.String()).
		Delete(&ParkingLot{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectLot, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectLot, errorCodeDelete, parking.ErrLotNotFound)
	}
	return nil
}

func (store *Store) CreateReservation(ctx context.Context, reservation parking.Reservation) (parking.Reservation, error) {
	model := Reservation{
		ParkingLotID: reservation.ParkingLotID,
		CustomerName: reservation.CustomerName,
		CarPlate:     reservation.CarPlate,
		StartTime:    reservation.StartTime.UTC(),
		EndTime:      reservation.EndTime.UTC(),
		TotalPrice:   reservation.TotalPrice,
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isConstraintViolation(err) {
		return parking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, parking.ErrInvalidRecord)
	}
	if err != nil {
		return parking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeCreate, err)
	}
	return mapReservation(model), nil
}

func (store *Store) ListReservations(ctx context.Context) ([]parking.ReservationWithLot, error) {
	var rows []Reservation
	err := store.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	summaries, err := store.lotSummaries(ctx, rows)
	if err != nil {
		return nil, err
	}
	reservations := make([]parking.ReservationWithLot, 0, len(rows))
	for _, row := range rows {
		reservations = append(reservations, parking.ReservationWithLot{
			Reservation: mapReservation(row),
			Lot:         summaries[row.ParkingLotID],
		})
	}
	return reservations, nil
}

func (store *Store) GetReservation(ctx context.Context, id parking.RecordID) (parking.ReservationWithLot, error) {
	var model Reservation
	err := store.db.WithContext(ctx).
		Where("reservation_id = ?", id.String()).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return parking.ReservationWithLot{}, wrapStoreError(errorSubjectReservation, errorCodeGet, parking.ErrReservationNotFound)
		}
		return parking.ReservationWithLot{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	summaries, err := store.lotSummaries(ctx, []Reservation{model})
	if err != nil {
		return parking.ReservationWithLot{}, err
	}
	return parking.ReservationWithLot{
		Reservation: mapReservation(model),
		Lot:         summaries[model.ParkingLotID],
	}, nil
}

func (store *Store) UpdateReservation(ctx context.Context, id parking.RecordID, reservation parking.Reservation) (parking.Reservation, error) {
	result := store.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("reservation_id = ?", id.String()).
		Select("parking_lot_id", "customer_name", "car_plate", "start_time", "end_time", "total_price", "updated_at").
		Updates(Reservation{
			ParkingLotID: reservation.ParkingLotID,
			CustomerName: reservation.CustomerName,
			CarPlate:     reservation.CarPlate,
			StartTime:    reservation.StartTime.UTC(),
			EndTime:      reservation.EndTime.UTC(),
			TotalPrice:   reservation.TotalPrice,
		})
	if isConstraintViolation(result.Error) {
		return parking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, parking.ErrInvalidRecord)
	}
	if result.Error != nil {
		return parking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return parking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeUpdate, parking.ErrReservationNotFound)
	}
	var model Reservation
	if err := store.db.WithContext(ctx).Where("reservation_id = ?", id.String()).Take(&model).Error; err != nil {
		return parking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	return mapReservation(model), nil
}

func (store *Store) DeleteReservation(ctx context.Context, id parking.RecordID) error {
	result := store.db.WithContext(ctx).
		Where("reservation_id = ?", id.String()).
		Delete(&Reservation{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, parking.ErrReservationNotFound)
	}
	return nil
}

// lotSummaries resolves the lot projection for a batch of reservations with
// a single indexed lookup. Lots that no longer exist are simply absent from
// the result, leaving the projection nil.
func (store *Store) lotSummaries(ctx context.Context, rows []Reservation) (map[string]*parking.LotSummary, error) {
	if len(rows) == 0 {
		return map[string]*parking.LotSummary{}, nil
	}
	seen := make(map[string]struct{}, len(rows))
	lotIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ParkingLotID]; ok {
			continue
		}
		seen[row.ParkingLotID] = struct{}{}
		lotIDs = append(lotIDs, row.ParkingLotID)
	}
	var lots []ParkingLot
	err := store.db.WithContext(ctx).
		Where("lot_id IN ?", lotIDs).
		Find(&lots).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectLot, errorCodeList, err)
	}
	summaries := make(map[string]*parking.LotSummary, len(lots))
	for _, lot := range lots {
		summaries[lot.LotID] = &parking.LotSummary{
			Name:         lot.Name,
			Address:      lot.Address,
			PricePerHour: lot.PricePerHour,
		}
	}
	return summaries, nil
}

func wrapStoreError(subject string, code string, err error) error {
	return parking.WrapError(errorOperationStore, subject, code, err)
}

func mapParkingLot(model ParkingLot) parking.ParkingLot {
	return parking.ParkingLot{
		ID:           model.LotID,
		Name:         model.Name,
		Address:      model.Address,
		PricePerHour: model.PricePerHour,
		TotalSpots:   model.TotalSpots,
		HasCCTV:      model.HasCCTV,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func mapReservation(model Reservation) parking.Reservation {
	return parking.Reservation{
		ID:           model.ReservationID,
		ParkingLotID: model.ParkingLotID,
		CustomerName: model.CustomerName,
		CarPlate:     model.CarPlate,
		StartTime:    model.StartTime,
		EndTime:      model.EndTime,
		TotalPrice:   model.TotalPrice,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCheckViolationCode || pgErr.Code == pgNotNullViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
