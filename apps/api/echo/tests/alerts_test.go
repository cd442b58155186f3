package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	. "github.com/trezcool/mahudhurio/apps/api/echo"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/staff"
	smssvc "github.com/trezcool/mahudhurio/services/sms"
	"github.com/trezcool/mahudhurio/tests"
)

func Test_alertApi_run(t *testing.T) {
	app := setup(t)
	path := "/v1/alerts/run"
	date := "2025-11-03"

	admin := testutil.CreateStaff(t, stfRepo, "Admin", "admin1", "admin@test.cd", "pa$$word!", staff.AdminRoles, true)
	teacher := testutil.CreateStaff(t, stfRepo, "Teacher", "teacher", "teacher@test.cd", "pa$$word!", staff.TeacherRoles, true)

	amina := testutil.CreateStudent(t, stdRepo, "Amina", "5", "Mrs. Yusuf", "6134211700")
	bilal := testutil.CreateStudent(t, stdRepo, "Bilal", "5", "Mr. Diallo", "6134211701")
	math := testutil.CreateCourse(t, attRepo, "Math", "5")

	if err := attRepo.SetCourseAttendance(date, math.ID, []attendance.Entry{
		{StudentID: amina.ID, Status: attendance.StatusAbsent},
		{StudentID: bilal.ID, Status: attendance.StatusPresent},
	}); err != nil {
		t.Fatalf("SetCourseAttendance() failed: %v", err)
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("run for date", func(t *testing.T) {
		data := marchallObj(t, RunAlertsRequest{Date: date})
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, admin), data)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp RunAlertsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if resp.Date != date || len(resp.Outcomes) != 1 {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if resp.Outcomes[0].StudentID != amina.ID || resp.Outcomes[0].ProviderSID == "" {
			t.Errorf("unexpected outcome: %+v", resp.Outcomes[0])
		}

		if len(smssvc.SentMessages) != 1 {
			t.Fatalf("expected 1 SMS, got %d", len(smssvc.SentMessages))
		}
		msg := smssvc.SentMessages[0]
		if msg.To != "+16134211700" {
			t.Errorf("unexpected recipient %q", msg.To)
		}
		if !strings.Contains(msg.Body, "Amina was marked as Absent") {
			t.Errorf("unexpected message body %q", msg.Body)
		}
	})

	t.Run("re-run skips already notified", func(t *testing.T) {
		data := marchallObj(t, RunAlertsRequest{Date: date})
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, admin), data)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp RunAlertsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if len(resp.Outcomes) != 1 || resp.Outcomes[0].Skipped != "already notified" {
			t.Errorf("unexpected outcomes: %+v", resp.Outcomes)
		}
		if len(smssvc.SentMessages) != 1 {
			t.Errorf("expected no further SMS, got %d", len(smssvc.SentMessages))
		}
	})
}
