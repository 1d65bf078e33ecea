package http

import (
	"net/http"

	"golang-backtest/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSignals(base *echo.Group) {
	base.POST("/v1/signals/evaluate", h.evaluateSignal)
}

func (h *HttpAPIHandler) evaluateSignal(c echo.Context) error {
	req := new(dto.EvaluateSignalRequest)
	if ok, err := h.bindAndValidate(c, req); !ok {
		return err
	}

	result, err := h.service.SignalService.Evaluate(c.Request().Context(), *req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}
