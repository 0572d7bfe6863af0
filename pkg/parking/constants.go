package parking

const (
	operationCreateLot         = "create_lot"
	operationUpdateLot         = "update_lot"
	operationDeleteLot         = "delete_lot"
	operationCreateReservation = "create_reservation"
	operationUpdateReservation = "update_reservation"
	operationDeleteReservation = "delete_reservation"

	subjectLot         = "parking_lot"
	subjectReservation = "reservation"

	operationStatusOK    = "ok"
	operationStatusError = "error"
)
