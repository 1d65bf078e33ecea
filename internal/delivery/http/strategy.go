package http

import (
	"net/http"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"

	"github.com/labstack/echo/v4"
)

const defaultListLimit = 50

func (h *HttpAPIHandler) SetupStrategies(base *echo.Group) {
	v1 := base.Group("/v1/strategies")
	{
		v1.POST("", h.createStrategy)
		v1.GET("", h.listStrategies)
		v1.GET("/:id", h.getStrategy)
		v1.POST("/:id/backtest", h.runSavedStrategy)
		v1.GET("/:id/runs", h.listRuns)
	}
}

func (h *HttpAPIHandler) createStrategy(c echo.Context) error {
	req := new(dto.CreateStrategyRequest)
	if ok, err := h.bindAndValidate(c, req); !ok {
		return err
	}

	strategy, err := h.service.StrategyService.CreateStrategy(c.Request().Context(), *req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Strategy created", strategy))
}

func (h *HttpAPIHandler) listStrategies(c echo.Context) error {
	req := new(dto.ListStrategiesRequest)
	if ok, err := h.bindAndValidate(c, req); !ok {
		return err
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	param := model.GetStrategyParam{Limit: &limit}
	if req.IsActive != "" {
		active := req.IsActive == "true"
		param.IsActive = &active
	}
	strategies, err := h.service.StrategyService.ListStrategies(c.Request().Context(), param)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", strategies))
}

func (h *HttpAPIHandler) getStrategy(c echo.Context) error {
	strategy, err := h.service.StrategyService.GetStrategy(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", strategy))
}

func (h *HttpAPIHandler) runSavedStrategy(c echo.Context) error {
	req := new(dto.SavedBacktestRequest)
	if ok, err := h.bindAndValidate(c, req); !ok {
		return err
	}

	output, err := h.service.StrategyService.RunStrategy(c.Request().Context(), c.Param("id"), req.StartDate, req.EndDate, model.RunTriggerAPI)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Backtest completed", output))
}

func (h *HttpAPIHandler) listRuns(c echo.Context) error {
	req := new(dto.ListRunsRequest)
	if ok, err := h.bindAndValidate(c, req); !ok {
		return err
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	runs, err := h.service.StrategyService.ListRuns(c.Request().Context(), model.GetBacktestRunParam{
		StrategyID: c.Param("id"),
		Limit:      &limit,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", runs))
}
