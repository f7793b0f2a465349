package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/store"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
	"github.com/askwhyharsh/geohunt/pkg/logger"
	"github.com/askwhyharsh/geohunt/pkg/validator"
	"github.com/gin-gonic/gin"
)

// Publisher is told about every accepted write.
type Publisher interface {
	Publish(ctx context.Context, r role.Role, rec store.Record)
}

type Handler struct {
	store     store.Store
	publisher Publisher
	validator validator.Validator
	logger    logger.Logger
}

// CoordinatesRequest uses pointers so a missing field can be told apart
// from a legitimate zero.
type CoordinatesRequest struct {
	Latitude   *float64 `json:"latitude" binding:"required"`
	Longitude  *float64 `json:"longitude" binding:"required"`
	Difficulty *string  `json:"difficulty"`
}

func NewHandler(st store.Store, publisher Publisher, validator validator.Validator, log logger.Logger) *Handler {
	return &Handler{
		store:     st,
		publisher: publisher,
		validator: validator,
		logger:    log,
	}
}

// POST /coordinates/:role
func (h *Handler) PostCoordinates(c *gin.Context) {
	rec, r, appErr := h.parseWrite(c)
	if appErr != nil {
		c.JSON(appErr.StatusCode, ErrorResponse(appErr.Error(), appErr.Code))
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Put(ctx, r, rec); err != nil {
		h.logger.Error("Failed to store coordinates", "role", r.String(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse("Failed to store coordinates", CodeStorageError))
		return
	}

	if h.publisher != nil {
		h.publisher.Publish(ctx, r, rec)
	}

	c.JSON(http.StatusOK, SuccessResponse(nil))
}

func (h *Handler) parseWrite(c *gin.Context) (store.Record, role.Role, *apperrors.AppError) {
	invalid := func(err error, message string) *apperrors.AppError {
		return apperrors.NewAppError(err, message, http.StatusBadRequest).WithCode(CodeInvalidCoordinates)
	}

	r, err := h.validator.ValidateRole(c.Param("role"))
	if err != nil {
		return store.Record{}, 0, invalid(err, err.Error())
	}

	var req CoordinatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return store.Record{}, 0, invalid(apperrors.ErrInvalidCoordinates, "Invalid coordinates format")
	}

	if err := h.validator.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
		msg := apperrors.ErrInvalidCoordinates.Error()
		switch {
		case errors.Is(err, apperrors.ErrInvalidLatitude):
			msg = apperrors.ErrInvalidLatitude.Error()
		case errors.Is(err, apperrors.ErrInvalidLongitude):
			msg = apperrors.ErrInvalidLongitude.Error()
		}
		return store.Record{}, 0, invalid(err, msg)
	}

	rec := store.Record{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if req.Difficulty != nil {
		d, err := h.validator.ValidateDifficulty(*req.Difficulty)
		if err != nil {
			return store.Record{}, 0, invalid(err, err.Error())
		}
		rec.Difficulty = &d
	}

	return rec, r, nil
}

// GET /coordinates/:role
func (h *Handler) GetCoordinates(c *gin.Context) {
	r, err := h.validator.ValidateRole(c.Param("role"))
	if err != nil {
		// Nothing can ever be stored under an unknown role.
		c.JSON(http.StatusNotFound, ErrorResponse(apperrors.ErrCoordinatesNotFound.Error(), CodeNotFound))
		return
	}

	rec, err := h.store.Get(c.Request.Context(), r)
	if err != nil {
		h.logger.Error("Failed to load coordinates", "role", r.String(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse("Failed to load coordinates", CodeStorageError))
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, ErrorResponse(apperrors.ErrCoordinatesNotFound.Error(), CodeNotFound))
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
