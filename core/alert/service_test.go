package alert_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/alert"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
	"github.com/trezcool/mahudhurio/storage/database/inmem"
)

const testDate = "2025-11-03"

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(string, ...interface{})       {}
func (nopLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

// smsMock records sent messages; the first `failures` calls error out.
type smsMock struct {
	mu       sync.Mutex
	sent     []core.SMSMessage
	failures int
	calls    int
}

func (m *smsMock) Send(_ context.Context, msg core.SMSMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.calls <= m.failures {
		return "", errors.New("provider unavailable")
	}
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("SM%04d", m.calls), nil
}

type fixture struct {
	svc    *alert.Service
	sms    *smsMock
	attSvc *attendance.Service
	stdSvc *student.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	conf := &core.Config{
		AppName: "Mahudhurio",
		School: core.SchoolConfig{
			Name:  "Test School",
			Phone: "+16135550100",
		},
		SMS: core.SMSConfig{Sender: "+16135550199", SendTimeout: time.Second},
	}

	sms := new(smsMock)
	attSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db))
	stdSvc := student.NewService(inmemdb.NewStudentRepository(db))
	svc := alert.NewService(conf, nopLogger{}, attSvc, stdSvc, sms, nil, inmemdb.NewAlertRepository(db))
	return &fixture{svc: svc, sms: sms, attSvc: attSvc, stdSvc: stdSvc}
}

func (f *fixture) createStudent(t *testing.T, name, phone string) student.Student {
	t.Helper()
	std, err := f.stdSvc.Create(student.NewStudent{
		Name:          name,
		Grade:         "5",
		GuardianPhone: phone,
	})
	if err != nil {
		t.Fatalf("creating student failed: %v", err)
	}
	return std
}

func (f *fixture) createCourse(t *testing.T, title string) attendance.Course {
	t.Helper()
	crs, err := f.attSvc.CreateCourse(attendance.NewCourse{Title: title, Grade: "5"})
	if err != nil {
		t.Fatalf("creating course failed: %v", err)
	}
	return crs
}

func (f *fixture) take(t *testing.T, courseID string, entries ...attendance.SetEntry) {
	t.Helper()
	err := f.attSvc.SetCourseAttendance(testDate, courseID, attendance.SetCourseAttendance{Entries: entries})
	if err != nil {
		t.Fatalf("setting attendance failed: %v", err)
	}
}

func TestRun_noRecordForDate(t *testing.T) {
	f := setup(t)

	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, f.sms.sent, "no SMS call may be made without a record")
}

func TestRun_allPresent(t *testing.T) {
	f := setup(t)
	s1 := f.createStudent(t, "Amina", "6134211700")
	crs := f.createCourse(t, "Grade 5 Math")
	f.take(t, crs.ID, attendance.SetEntry{StudentID: s1.ID, Status: attendance.StatusPresent})

	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, f.sms.sent, "no SMS call may be made when nobody is flagged")
}

func TestRun_singleAbsence(t *testing.T) {
	f := setup(t)
	s1 := f.createStudent(t, "Amina", "6134211700")
	s2 := f.createStudent(t, "Bilal", "6134211701")
	crs := f.createCourse(t, "Grade 5 Math")
	f.take(t, crs.ID,
		attendance.SetEntry{StudentID: s1.ID, Status: attendance.StatusAbsent},
		attendance.SetEntry{StudentID: s2.ID, Status: attendance.StatusPresent},
	)

	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)
	if assert.Len(t, outcomes, 1) {
		assert.Equal(t, s1.ID, outcomes[0].StudentID)
		assert.Equal(t, "+16134211700", outcomes[0].Phone)
		assert.NotEmpty(t, outcomes[0].ProviderSID)
	}
	if assert.Len(t, f.sms.sent, 1) {
		assert.Equal(t, "+16134211700", f.sms.sent[0].To)
		assert.Contains(t, f.sms.sent[0].Body, "Amina was marked as Absent")
		assert.Contains(t, f.sms.sent[0].Body, "Monday, Nov 3, 2025")
		assert.Contains(t, f.sms.sent[0].Body, "+16135550100")
		assert.Contains(t, f.sms.sent[0].Body, "(Do not reply)")
	}
}

func TestRun_consolidatesMultipleCourses(t *testing.T) {
	f := setup(t)
	s3 := f.createStudent(t, "Chidi", "6134211702")
	// titles chosen so course order puts the lateness first
	algebra := f.createCourse(t, "Algebra")
	math := f.createCourse(t, "Math")
	f.take(t, algebra.ID, attendance.SetEntry{StudentID: s3.ID, Status: attendance.StatusLate})
	f.take(t, math.ID, attendance.SetEntry{StudentID: s3.ID, Status: attendance.StatusAbsent})

	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)
	assert.Len(t, outcomes, 1, "two issues, one student: exactly one message")
	if assert.Len(t, f.sms.sent, 1) {
		assert.Contains(t, f.sms.sent[0].Body, "marked as Late, Absent", "statuses joined in course order")
	}
}

func TestRun_skipsStudentWithoutPhone(t *testing.T) {
	f := setup(t)
	s1 := f.createStudent(t, "Amina", "") // no guardian phone
	s2 := f.createStudent(t, "Bilal", "6134211701")
	crs := f.createCourse(t, "Science")
	f.take(t, crs.ID,
		attendance.SetEntry{StudentID: s1.ID, Status: attendance.StatusAbsent},
		attendance.SetEntry{StudentID: s2.ID, Status: attendance.StatusLate},
	)

	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)
	assert.Len(t, outcomes, 2)

	byID := outcomesByID(outcomes)
	assert.Equal(t, "no guardian phone on file", byID[s1.ID].Skipped)
	assert.NotEmpty(t, byID[s2.ID].ProviderSID, "other flagged students must still be attempted")
	if assert.Len(t, f.sms.sent, 1) {
		assert.Equal(t, "+16134211701", f.sms.sent[0].To)
	}
}

func TestRun_skipsUnknownStudent(t *testing.T) {
	f := setup(t)
	s1 := f.createStudent(t, "Amina", "6134211700")
	crs := f.createCourse(t, "Science")
	f.take(t, crs.ID,
		attendance.SetEntry{StudentID: "4dbb7b3e-9ca2-4fbb-b4ed-f1b13bbec2f3", Status: attendance.StatusAbsent},
		attendance.SetEntry{StudentID: s1.ID, Status: attendance.StatusAbsent},
	)

	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)
	assert.Len(t, outcomes, 2)

	byID := outcomesByID(outcomes)
	assert.Equal(t, "no student record", byID["4dbb7b3e-9ca2-4fbb-b4ed-f1b13bbec2f3"].Skipped)
	assert.Len(t, f.sms.sent, 1)
}

func TestRun_providerFailureIsIsolated(t *testing.T) {
	f := setup(t)
	s1 := f.createStudent(t, "Amina", "6134211700")
	s2 := f.createStudent(t, "Bilal", "6134211701")
	crs := f.createCourse(t, "Science")
	f.take(t, crs.ID,
		attendance.SetEntry{StudentID: s1.ID, Status: attendance.StatusAbsent},
		attendance.SetEntry{StudentID: s2.ID, Status: attendance.StatusAbsent},
	)
	f.sms.failures = 1 // first send blows up

	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err, "a provider failure must not fail the run")
	assert.Len(t, outcomes, 2)

	var failed, sent int
	for _, out := range outcomes {
		switch {
		case out.Error != "":
			failed++
		case out.ProviderSID != "":
			sent++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, sent, "the second student must still be processed")
}

func TestRun_rerunDoesNotDoubleNotify(t *testing.T) {
	f := setup(t)
	s1 := f.createStudent(t, "Amina", "6134211700")
	crs := f.createCourse(t, "Science")
	f.take(t, crs.ID, attendance.SetEntry{StudentID: s1.ID, Status: attendance.StatusAbsent})

	_, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)
	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)

	if assert.Len(t, outcomes, 1) {
		assert.Equal(t, "already notified", outcomes[0].Skipped)
	}
	assert.Len(t, f.sms.sent, 1, "re-running a date must not double-notify")
}

func TestRun_failedSendRetriedOnRerun(t *testing.T) {
	f := setup(t)
	s1 := f.createStudent(t, "Amina", "6134211700")
	crs := f.createCourse(t, "Science")
	f.take(t, crs.ID, attendance.SetEntry{StudentID: s1.ID, Status: attendance.StatusAbsent})
	f.sms.failures = 1

	_, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)
	outcomes, err := f.svc.Run(context.Background(), testDate)
	assert.NoError(t, err)

	if assert.Len(t, outcomes, 1) {
		assert.NotEmpty(t, outcomes[0].ProviderSID, "a failed student has no sent marker and is retried")
	}
	assert.Len(t, f.sms.sent, 1)
}

func TestBuildMessage(t *testing.T) {
	got := alert.BuildMessage(
		"2025-11-03", "Amina",
		[]attendance.Status{attendance.StatusLate, attendance.StatusAbsent},
		"+16135550100",
	)
	want := "Attendance Alert for Monday, Nov 3, 2025: Amina was marked as Late, Absent. " +
		"Please contact the school for more information at +16135550100. (Do not reply)"
	assert.Equal(t, want, got)
}

func outcomesByID(outcomes []alert.Outcome) map[string]alert.Outcome {
	byID := make(map[string]alert.Outcome, len(outcomes))
	for _, out := range outcomes {
		byID[out.StudentID] = out
	}
	return byID
}
