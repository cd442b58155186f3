package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

type smsApi struct {
	svc core.SMSService
}

// registerSMSAPI exposes a direct ad-hoc SMS endpoint. It is deliberately
// un-authed so the school frontend can call it without a staff session.
func registerSMSAPI(g *echo.Group, svc core.SMSService) {
	api := smsApi{svc: svc}
	g.POST("/sms", api.send)
}

type (
	SendSMSRequest struct {
		Phone   string `json:"phone_number" validate:"required,e164_"`
		Message string `json:"message" validate:"required"`
	}

	SendSMSResponse struct {
		SID string `json:"sid"`
	}
)

func (r *SendSMSRequest) Validate() error {
	r.Phone = core.CleanString(r.Phone)
	r.Message = core.CleanString(r.Message)
	return core.Validate.Struct(r)
}

func (api *smsApi) send(ctx echo.Context) error {
	var data SendSMSRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendSMSRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	to, ok := core.NormalizePhone(data.Phone)
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "phone_number", Error: "invalid phone number"})
	}

	sid, err := api.svc.Send(ctx.Request().Context(), core.SMSMessage{To: to, Body: data.Message})
	if err != nil {
		// the provider error message is part of the contract with the frontend
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, SendSMSResponse{SID: sid})
}
