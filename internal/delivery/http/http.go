package http

import (
	"context"
	"errors"
	"net/http"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/service"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/health", h.health)
	h.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	base := h.echo.Group("/api")
	h.SetupJobs(base)
	h.SetupBacktest(base)
	h.SetupStrategies(base)
	h.SetupSignals(base)
}

func (h *HttpAPIHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", nil))
}

// bindAndValidate reports the failure itself and returns false when req is unusable.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	return true, nil
}

func (h *HttpAPIHandler) errorResponse(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrNoSymbols),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrNoStrategies):
		code = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}
	return c.JSON(code, dto.NewBaseResponse(code, err.Error(), nil))
}
