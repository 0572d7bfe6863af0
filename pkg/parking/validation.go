package parking

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Request bodies are decoded into loosely typed fields so that every shape
// violation can be collected in one pass. Numeric fields additionally accept
// numeric strings, matching the store-facing coercion contract.

// LotInput is the inbound payload for creating or replacing a parking lot.
type LotInput struct {
	Name         any `json:"name"`
	Address      any `json:"address"`
	PricePerHour any `json:"pricePerHour"`
	TotalSpots   any `json:"totalSpots"`
	HasCCTV      any `json:"hasCCTV"`
}

// ReservationInput is the inbound payload for creating or replacing a
// reservation.
type ReservationInput struct {
	ParkingLotID any `json:"parkingLotId"`
	CustomerName any `json:"customerName"`
	CarPlate     any `json:"carPlate"`
	StartTime    any `json:"startTime"`
	EndTime      any `json:"endTime"`
}

// LotValidation holds the accumulated failure messages alongside the
// normalized field values. The values are only trustworthy when Messages is
// empty.
type LotValidation struct {
	Messages     []string
	Name         string
	Address      string
	PricePerHour float64
	TotalSpots   int64
	HasCCTV      bool
}

// ReservationValidation holds the accumulated failure messages alongside the
// parsed-but-unverified values. Start and End are returned regardless of
// validity; callers must check Messages before trusting them.
type ReservationValidation struct {
	Messages     []string
	ParkingLotID RecordID
	CustomerName string
	CarPlate     string
	Start        time.Time
	End          time.Time
}

// ValidateLotInput checks every field of a lot payload and collects all
// failures before reporting.
func ValidateLotInput(input LotInput) LotValidation {
	result := LotValidation{}

	name, ok := nonEmptyString(input.Name)
	if !ok {
		result.Messages = append(result.Messages, "name is required (string)")
	}
	result.Name = name

	address, ok := nonEmptyString(input.Address)
	if !ok {
		result.Messages = append(result.Messages, "address is required (string)")
	}
	result.Address = address

	price, ok := coerceNumber(input.PricePerHour)
	if !ok || price < 0 {
		result.Messages = append(result.Messages, "pricePerHour is required (number >= 0)")
	}
	result.PricePerHour = price

	totalSpots, ok := coerceNumber(input.TotalSpots)
	if !ok || totalSpots < 1 {
		result.Messages = append(result.Messages, "totalSpots is required (number >= 1)")
	}
	result.TotalSpots = int64(totalSpots)

	if input.HasCCTV != nil {
		hasCCTV, ok := input.HasCCTV.(bool)
		if !ok {
			result.Messages = append(result.Messages, "hasCCTV must be boolean")
		}
		result.HasCCTV = hasCCTV
	}

	return result
}

// ValidateReservationInput checks every field of a reservation payload and
// collects all failures before reporting.
func ValidateReservationInput(input ReservationInput) ReservationValidation {
	result := ReservationValidation{}

	rawLotID, _ := input.ParkingLotID.(string)
	lotID, err := NewRecordID(rawLotID)
	if err != nil {
		result.Messages = append(result.Messages, "parkingLotId is required (valid record id)")
	}
	result.ParkingLotID = lotID

	customerName, ok := nonEmptyString(input.CustomerName)
	if !ok {
		result.Messages = append(result.Messages, "customerName is required (string)")
	}
	result.CustomerName = customerName

	carPlate, ok := nonEmptyString(input.CarPlate)
	if !ok {
		result.Messages = append(result.Messages, "carPlate is required (string)")
	}
	result.CarPlate = strings.ToUpper(carPlate)

	if input.StartTime == nil {
		result.Messages = append(result.Messages, "startTime is required (ISO date string)")
	}
	if input.EndTime == nil {
		result.Messages = append(result.Messages, "endTime is required (ISO date string)")
	}

	start, startOK := parseTimestamp(input.StartTime)
	if input.StartTime != nil && !startOK {
		result.Messages = append(result.Messages, "startTime is invalid date")
	}
	end, endOK := parseTimestamp(input.EndTime)
	if input.EndTime != nil && !endOK {
		result.Messages = append(result.Messages, "endTime is invalid date")
	}
	result.Start = start
	result.End = end

	if startOK && endOK && !end.After(start) {
		result.Messages = append(result.Messages, "endTime must be after startTime")
	}

	return result
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp accepts RFC 3339 timestamps plus the shortened calendar
// forms browsers emit for datetime inputs.
func parseTimestamp(raw any) (time.Time, bool) {
	value, ok := raw.(string)
	if !ok {
		return time.Time{}, false
	}
	trimmed := strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func nonEmptyString(raw any) (string, bool) {
	value, ok := raw.(string)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// coerceNumber accepts JSON numbers and numeric strings, rejecting NaN and
// infinities.
func coerceNumber(raw any) (float64, bool) {
	var value float64
	switch typed := raw.(type) {
	case float64:
		value = typed
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
