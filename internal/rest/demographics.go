package rest

import (
	"context"
	"net/http"
	"time"

	"quixellMarket/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type DemographicsService interface {
	GetDemographics(ctx context.Context, userID string) (domain.Demographics, error)
	UpdateDemographics(ctx context.Context, userID string, update domain.DemographicsUpdate) error
}

type DemographicsHandler struct {
	service   DemographicsService
	validator *validator.Validate
	timeout   time.Duration
}

func NewDemographicsHandler(service DemographicsService) *DemographicsHandler {
	return &DemographicsHandler{
		service:   service,
		validator: validator.New(),
		timeout:   10 * time.Second,
	}
}

type UpdateDemographicsRequest struct {
	Age      *int     `json:"age" validate:"omitempty,gte=0,lte=120"`
	Gender   *string  `json:"gender"`
	Location *string  `json:"location"`
	Brands   []string `json:"brands" validate:"dive,max=100"`
}

func (h *DemographicsHandler) GetDemographics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	demo, err := h.service.GetDemographics(ctx, c.Param("user_id"))
	if err != nil {
		return respondError(c, "Failed to load demographics", err)
	}

	return c.JSON(http.StatusOK, demo)
}

func (h *DemographicsHandler) UpdateDemographics(c echo.Context) error {
	var req UpdateDemographicsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err := h.service.UpdateDemographics(ctx, c.Param("user_id"), domain.DemographicsUpdate{
		Age:      req.Age,
		Gender:   req.Gender,
		Location: req.Location,
		Brands:   req.Brands,
	})
	if err != nil {
		return respondError(c, "Failed to update demographics", err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Demographics updated"})
}
