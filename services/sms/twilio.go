package smssvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/trezcool/mahudhurio/core"
)

type twilioService struct {
	client *twilio.RestClient
	sender string
	logger core.Logger
}

var _ core.SMSService = (*twilioService)(nil)

// NewTwilioService builds the provider client once at startup; the pipeline
// receives it by interface and never touches provider globals.
func NewTwilioService(conf *core.Config, logger core.Logger) core.SMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: conf.SMS.AccountSID,
		Password: conf.SMS.AuthToken,
	})
	client.SetTimeout(conf.SMS.SendTimeout)
	return &twilioService{
		client: client,
		sender: conf.SMS.Sender,
		logger: logger,
	}
}

func (svc *twilioService) Send(ctx context.Context, msg core.SMSMessage) (string, error) {
	// the client enforces the request timeout; bail out early if the
	// caller's context is already done
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := new(openapi.CreateMessageParams)
	params.SetTo(msg.To)
	params.SetFrom(svc.sender)
	params.SetBody(msg.Body)

	resp, err := svc.client.Api.CreateMessage(params)
	if err != nil {
		return "", errors.Wrap(err, "twilio.CreateMessage")
	}
	if resp.Sid == nil {
		return "", errors.New("twilio.CreateMessage: no message SID in response")
	}
	return *resp.Sid, nil
}
