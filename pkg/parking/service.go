package parking

import (
	"context"
	"errors"
	"fmt"
)

// Service contains the domain logic over a Store: request validation,
// reservation pricing, and lot reference resolution. Everything else is a
// pass-through to the store.
type Service struct {
	store  Store
	logger OperationLogger
}

// NewService wires a Service.
func NewService(store Store, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// CreateLot validates and persists a new parking lot. HasCCTV defaults to
// false when omitted.
func (service *Service) CreateLot(ctx context.Context, input LotInput) (ParkingLot, error) {
	validation := ValidateLotInput(input)
	if len(validation.Messages) > 0 {
		return ParkingLot{}, NewValidationError(validation.Messages)
	}
	lot, err := service.store.CreateLot(ctx, ParkingLot{
		Name:         validation.Name,
		Address:      validation.Address,
		PricePerHour: validation.PricePerHour,
		TotalSpots:   validation.TotalSpots,
		HasCCTV:      validation.HasCCTV,
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCreateLot,
		Subject:   subjectLot,
		RecordID:  lot.ID,
		Error:     err,
	})
	return lot, err
}

// ListLots returns all lots, most-recently-created first.
func (service *Service) ListLots(ctx context.Context) ([]ParkingLot, error) {
	return service.store.ListLots(ctx)
}

// GetLot returns a lot by id.
func (service *Service) GetLot(ctx context.Context, id RecordID) (ParkingLot, error) {
	return service.store.GetLot(ctx, id)
}

// UpdateLot validates and fully replaces a lot's fields. There are no
// partial-patch semantics.
func (service *Service) UpdateLot(ctx context.Context, id RecordID, input LotInput) (ParkingLot, error) {
	validation := ValidateLotInput(input)
	if len(validation.Messages) > 0 {
		return ParkingLot{}, NewValidationError(validation.Messages)
	}
	lot, err := service.store.UpdateLot(ctx, id, ParkingLot{
		Name:         validation.Name,
		Address:      validation.Address,
		PricePerHour: validation.PricePerHour,
		TotalSpots:   validation.TotalSpots,
		HasCCTV:      validation.HasCCTV,
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationUpdateLot,
		Subject:   subjectLot,
		RecordID:  id.String(),
		Error:     err,
	})
	return lot, err
}

// DeleteLot removes a lot. Reservations referencing it are left untouched;
// the dangling reference is accepted, not reconciled.
func (service *Service) DeleteLot(ctx context.Context, id RecordID) error {
	err := service.store.DeleteLot(ctx, id)
	service.logOperation(ctx, OperationLog{
		Operation: operationDeleteLot,
		Subject:   subjectLot,
		RecordID:  id.String(),
		Error:     err,
	})
	return err
}

// CreateReservation validates the payload, resolves the referenced lot
// just-in-time, prices the span against the lot's current hourly rate, and
// persists. Nothing is written when validation or the lookup fails.
func (service *Service) CreateReservation(ctx context.Context, input ReservationInput) (Reservation, error) {
	validation := ValidateReservationInput(input)
	if len(validation.Messages) > 0 {
		return Reservation{}, NewValidationError(validation.Messages)
	}
	var created Reservation
	operationError := service.store.WithTx(ctx, func(ctx context.Context, txStore Store) error {
		lot, err := txStore.GetLot(ctx, validation.ParkingLotID)
		if err != nil {
			return replaceLotNotFound(err)
		}
		reservation, err := txStore.CreateReservation(ctx, Reservation{
			ParkingLotID: lot.ID,
			CustomerName: validation.CustomerName,
			CarPlate:     validation.CarPlate,
			StartTime:    validation.Start,
			EndTime:      validation.End,
			TotalPrice:   CalcTotalPrice(validation.Start, validation.End, lot.PricePerHour),
		})
		if err != nil {
			return err
		}
		created = reservation
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCreateReservation,
		Subject:   subjectReservation,
		RecordID:  created.ID,
		Error:     operationError,
	})
	return created, operationError
}

// ListReservations returns all reservations, most-recently-created first,
// each carrying the read-only projection of its referenced lot.
func (service *Service) ListReservations(ctx context.Context) ([]ReservationWithLot, error) {
	return service.store.ListReservations(ctx)
}

// GetReservation returns a reservation with its lot projection.
func (service *Service) GetReservation(ctx context.Context, id RecordID) (ReservationWithLot, error) {
	return service.store.GetReservation(ctx, id)
}

// UpdateReservation re-validates, re-resolves the referenced lot (which may
// have changed since creation), re-prices, and fully replaces the record.
func (service *Service) UpdateReservation(ctx context.Context, id RecordID, input ReservationInput) (Reservation, error) {
	validation := ValidateReservationInput(input)
	if len(validation.Messages) > 0 {
		return Reservation{}, NewValidationError(validation.Messages)
	}
	var updated Reservation
	operationError := service.store.WithTx(ctx, func(ctx context.Context, txStore Store) error {
		lot, err := txStore.GetLot(ctx, validation.ParkingLotID)
		if err != nil {
			return replaceLotNotFound(err)
		}
		reservation, err := txStore.UpdateReservation(ctx, id, Reservation{
			ParkingLotID: lot.ID,
			CustomerName: validation.CustomerName,
			CarPlate:     validation.CarPlate,
			StartTime:    validation.Start,
			EndTime:      validation.End,
			TotalPrice:   CalcTotalPrice(validation.Start, validation.End, lot.PricePerHour),
		})
		if err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationUpdateReservation,
		Subject:   subjectReservation,
		RecordID:  id.String(),
		Error:     operationError,
	})
	return updated, operationError
}

// DeleteReservation removes a reservation.
func (service *Service) DeleteReservation(ctx context.Context, id RecordID) error {
	err := service.store.DeleteReservation(ctx, id)
	service.logOperation(ctx, OperationLog{
		Operation: operationDeleteReservation,
		Subject:   subjectReservation,
		RecordID:  id.String(),
		Error:     err,
	})
	return err
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

// replaceLotNotFound distinguishes a dangling parkingLotId reference from a
// direct lot lookup miss.
func replaceLotNotFound(err error) error {
	if errors.Is(err, ErrLotNotFound) {
		return fmt.Errorf("%w: %v", ErrLotReferenceNotFound, err)
	}
	return err
}
