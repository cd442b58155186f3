package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"

	. "github.com/trezcool/mahudhurio/apps/api/echo"
	"github.com/trezcool/mahudhurio/core"
	smssvc "github.com/trezcool/mahudhurio/services/sms"
)

type failingSMSService struct {
	err error
}

func (svc failingSMSService) Send(context.Context, core.SMSMessage) (string, error) {
	return "", svc.err
}

func Test_smsApi_send(t *testing.T) {
	app := setup(t)
	path := "/v1/sms"

	tests := []httpTest{
		{
			name:     "empty body",
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"phone_number": "this field is required", "message": "this field is required"}),
		},
		{
			name:     "invalid phone",
			body:     marchallObj(t, SendSMSRequest{Phone: "not-a-number", Message: "Hello"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"phone_number": "invalid phone number; expected E.164 format"}),
		},
		{
			name:     "missing message",
			body:     marchallObj(t, SendSMSRequest{Phone: "+16134211700"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"message": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("send ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, marchallObj(t, SendSMSRequest{Phone: "16134211700", Message: "Hello there"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp SendSMSResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if !strings.HasPrefix(resp.SID, "SM") {
			t.Errorf("unexpected sid %q", resp.SID)
		}
		if len(smssvc.SentMessages) != 1 {
			t.Fatalf("expected 1 sent message, got %d", len(smssvc.SentMessages))
		}
		if smssvc.SentMessages[0].To != "+16134211700" {
			t.Errorf("expected a normalized recipient, got %q", smssvc.SentMessages[0].To)
		}
	})

	t.Run("provider failure surfaces the error", func(t *testing.T) {
		failing := setup(t, failingSMSService{err: errors.New("provider exploded")})

		req, rec := newRequest(http.MethodPost, path, marchallObj(t, SendSMSRequest{Phone: "+16134211700", Message: "Hello"}))
		failing.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusInternalServerError,
			wantData: marchallObj(t, httpErr{Error: "provider exploded"}),
		}, rec)
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req, rec := newRequest(http.MethodOptions, path)
		req.Header.Set("Origin", "https://school.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})
}
