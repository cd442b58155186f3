package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/alert"
)

type alertApi struct {
	svc *alert.Service
}

func registerAlertAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *alert.Service) {
	api := alertApi{svc: svc}

	ag := g.Group("/alerts", jwt, adminMiddleware())
	ag.POST("/run", api.run)
}

type (
	RunAlertsRequest struct {
		// Date defaults to today in the school timezone when omitted.
		Date string `json:"date"`
	}

	RunAlertsResponse struct {
		Date     string          `json:"date"`
		Outcomes []alert.Outcome `json:"outcomes"`
	}
)

// run triggers the notification pipeline for one date, typically to catch up
// after a failed scheduled run.
func (api *alertApi) run(ctx echo.Context) error {
	var data RunAlertsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RunAlertsRequest")
	}

	date := core.CleanString(data.Date)
	if date == "" {
		date = api.svc.Today()
	}

	outcomes, err := api.svc.Run(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "running alerts")
	}
	if outcomes == nil {
		outcomes = []alert.Outcome{}
	}
	return ctx.JSON(http.StatusOK, RunAlertsResponse{Date: date, Outcomes: outcomes})
}
