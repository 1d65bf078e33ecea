package http

import (
	"net/http"

	"golang-backtest/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupBacktest(base *echo.Group) {
	backtestGroup := base.Group("/v1/backtest")
	backtestGroup.POST("", h.runBacktest)
	backtestGroup.POST("/compare", h.runComparison)
}

func (h *HttpAPIHandler) runBacktest(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.BacktestRequest)
	if ok, err := h.bindAndValidate(c, req); !ok {
		return err
	}

	result, err := h.service.BacktestService.RunBacktest(ctx, req.Strategy, req.StartDate, req.EndDate, nil)
	if err != nil {
		return h.errorResponse(c, err)
	}

	message := "Backtest completed"
	if result.IsEmpty() {
		message = "No trading dates in the requested range"
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse(message, result))
}

func (h *HttpAPIHandler) runComparison(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.ComparisonRequest)
	if ok, err := h.bindAndValidate(c, req); !ok {
		return err
	}

	results, err := h.service.BacktestService.RunComparison(ctx, req.Strategies, req.StartDate, req.EndDate, nil)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Comparison completed", results))
}
