package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/parking/pkg/parking"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	messageInvalidID            = "Invalid id"
	messageValidationError      = "Validation error"
	messageLotNotFound          = "Parking lot not found"
	messageLotReferenceNotFound = "Parking lot not found for this parkingLotId"
	messageReservationNotFound  = "Reservation not found"
	messageRouteNotFound        = "Route not found"
	messageServerError          = "Server error"
	messageHealthy              = "API is working"
	messageInvalidBody          = "request body must be valid JSON"
)

// Run serves the parking API until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config, logger *zap.Logger, service *parking.Service) error {
	handler := &httpHandler{
		logger:  logger,
		service: service,
	}
	router := setupRouter(cfg, handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("parking api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": messageHealthy})
	})

	lots := router.Group("/parking-lots")
	lots.POST("", handler.handleCreateLot)
	lots.GET("", handler.handleListLots)
	lots.GET("/:id", handler.handleGetLot)
	lots.PUT("/:id", handler.handleUpdateLot)
	lots.DELETE("/:id", handler.handleDeleteLot)

	reservations := router.Group("/reservations")
	reservations.POST("", handler.handleCreateReservation)
	reservations.GET("", handler.handleListReservations)
	reservations.GET("/:id", handler.handleGetReservation)
	reservations.PUT("/:id", handler.handleUpdateReservation)
	reservations.DELETE("/:id", handler.handleDeleteReservation)

	if cfg.StaticDir != "" {
		router.Static("/public", cfg.StaticDir)
	}

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": messageRouteNotFound})
	})

	return router
}

func corsConfig(cfg Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Origin", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	return corsCfg
}

type httpHandler struct {
	logger  *zap.Logger
	service *parking.Service
}

func (handler *httpHandler) handleCreateLot(ctx *gin.Context) {
	var input parking.LotInput
	if !bindJSON(ctx, &input) {
		return
	}
	lot, err := handler.service.CreateLot(ctx.Request.Context(), input)
	if err != nil {
		handler.renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, lotPayloadFrom(lot))
}

func (handler *httpHandler) handleListLots(ctx *gin.Context) {
	lots, err := handler.service.ListLots(ctx.Request.Context())
	if err != nil {
		handler.renderError(ctx, err)
		return
	}
	payload := make([]lotPayload, 0, len(lots))
	for _, lot := range lots {
		payload = append(payload, lotPayloadFrom(lot))
	}
	ctx.JSON(http.StatusOK, payload)
}

func (handler *httpHandler) handleGetLot(ctx *gin.Context) {
	id, ok := parseRecordID(ctx)
	if !ok {
		return
	}
	lot, err := handler.service.GetLot(ctx.Request.Context(), id)
	if err != nil {
		handler.renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, lotPayloadFrom(lot))
}

func (handler *httpHandler) handleUpdateLot(ctx *gin.Context) {
	id, ok := parseRecordID(ctx)
	if !ok {
		return
	}
	var input parking.LotInput
	if !bindJSON(ctx, &input) {
		return
	}
	lot, err := handler.service.UpdateLot(ctx.Request.Context(), id, input)
	if err != nil {
		handler.renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, lotPayloadFrom(lot))
}

func (handler *httpHandler) handleDeleteLot(ctx *gin.Context) {
	id, ok := parseRecordID(ctx)
	if !ok {
		return
	}
	if err := handler.service.DeleteLot(ctx.Request.Context(), id); err != nil {
		handler.renderError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (handler *httpHandler) handleCreateReservation(ctx *gin.Context) {
	var input parking.ReservationInput
	if !bindJSON(ctx, &input) {
		return
	}
	reservation, err := handler.service.CreateReservation(ctx.Request.Context(), input)
	if err != nil {
		handler.renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, reservationPayloadFrom(reservation, nil))
}

func (handler *httpHandler) handleListReservations(ctx *gin.Context) {
	reservations, err := handler.service.ListReservations(ctx.Request.Context())
	if err != nil {
		handler.renderError(ctx, err)
		return
	}
	payload := make([]reservationPayload, 0, len(reservations))
	for _, reservation := range reservations {
		payload = append(payload, reservationPayloadFrom(reservation.Reservation, reservation.Lot))
	}
	ctx.JSON(http.StatusOK, payload)
}

func (handler *httpHandler) handleGetReservation(ctx *gin.Context) {
	id, ok := parseRecordID(ctx)
	if !ok {
		return
	}
	reservation, err := handler.service.GetReservation(ctx.Request.Context(), id)
	if err != nil {
		handler.renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, reservationPayloadFrom(reservation.Reservation, reservation.Lot))
}

func (handler *httpHandler) handleUpdateReservation(ctx *gin.Context) {
	id, ok := parseRecordID(ctx)
	if !ok {
		return
	}
	var input parking.ReservationInput
	if !bindJSON(ctx, &input) {
		return
	}
	reservation, err := handler.service.UpdateReservation(ctx.Request.Context(), id, input)
	if err != nil {
		handler.renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, reservationPayloadFrom(reservation, nil))
}

func (handler *httpHandler) handleDeleteReservation(ctx *gin.Context) {
	id, ok := parseRecordID(ctx)
	if !ok {
		return
	}
	if err := handler.service.DeleteReservation(ctx.Request.Context(), id); err != nil {
		handler.renderError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// renderError translates domain failures into the wire taxonomy. Anything
// unrecognized is logged with full detail and reported as a generic 500.
func (handler *httpHandler) renderError(ctx *gin.Context, err error) {
	var validationError *parking.ValidationError
	switch {
	case errors.As(err, &validationError):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"message": messageValidationError,
			"errors":  validationError.Messages(),
		})
	case errors.Is(err, parking.ErrInvalidRecord):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"message": messageValidationError,
			"errors":  []string{"record violates store constraints"},
		})
	case errors.Is(err, parking.ErrLotReferenceNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"message": messageLotReferenceNotFound})
	case errors.Is(err, parking.ErrLotNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"message": messageLotNotFound})
	case errors.Is(err, parking.ErrReservationNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"message": messageReservationNotFound})
	default:
		handler.logger.Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(err),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": messageServerError})
	}
}

func parseRecordID(ctx *gin.Context) (parking.RecordID, bool) {
	id, err := parking.NewRecordID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": messageInvalidID})
		return parking.RecordID{}, false
	}
	return id, true
}

func bindJSON(ctx *gin.Context, target any) bool {
	if err := ctx.ShouldBindJSON(target); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"message": messageValidationError,
			"errors":  []string{messageInvalidBody},
		})
		return false
	}
	return true
}

type lotPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	PricePerHour float64   `json:"pricePerHour"`
	TotalSpots   int64     `json:"totalSpots"`
	HasCCTV      bool      `json:"hasCCTV"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type lotSummaryPayload struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	PricePerHour float64 `json:"pricePerHour"`
}

type reservationPayload struct {
	ID           string             `json:"id"`
	ParkingLotID string             `json:"parkingLotId"`
	CustomerName string             `json:"customerName"`
	CarPlate     string             `json:"carPlate"`
	StartTime    time.Time          `json:"startTime"`
	EndTime      time.Time          `json:"endTime"`
	TotalPrice   float64            `json:"totalPrice"`
	ParkingLot   *lotSummaryPayload `json:"parkingLot,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func lotPayloadFrom(lot parking.ParkingLot) lotPayload {
	return lotPayload{
		ID:           lot.ID,
		Name:         lot.Name,
		Address:      lot.Address,
		PricePerHour: lot.PricePerHour,
		TotalSpots:   lot.TotalSpots,
		HasCCTV:      lot.HasCCTV,
		CreatedAt:    lot.CreatedAt,
		UpdatedAt:    lot.UpdatedAt,
	}
}

func reservationPayloadFrom(reservation parking.Reservation, lot *parking.LotSummary) reservationPayload {
	payload := reservationPayload{
		ID:           reservation.ID,
		ParkingLotID: reservation.ParkingLotID,
		CustomerName: reservation.CustomerName,
		CarPlate:     reservation.CarPlate,
		StartTime:    reservation.StartTime,
		EndTime:      reservation.EndTime,
		TotalPrice:   reservation.TotalPrice,
		CreatedAt:    reservation.CreatedAt,
		UpdatedAt:    reservation.UpdatedAt,
	}
	if lot != nil {
		payload.ParkingLot = &lotSummaryPayload{
			Name:         lot.Name,
			Address:      lot.Address,
			PricePerHour: lot.PricePerHour,
		}
	}
	return payload
}
