package alert

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

type (
	// Repository records per-(date, student) sent markers so a re-run for
	// the same date does not double-notify guardians.
	Repository interface {
		WasNotified(date, studentID string) (bool, error)
		MarkNotified(date, studentID, providerSID string) error
	}

	// Outcome is the transient per-student result of one run. Not persisted
	// beyond the sent marker; surfaced via logs and the run summary.
	Outcome struct {
		StudentID   string `json:"student_id"`
		StudentName string `json:"student_name"`
		Phone       string `json:"phone,omitempty"`
		ProviderSID string `json:"provider_sid,omitempty"`
		Skipped     string `json:"skipped,omitempty"` // reason when no send was attempted
		Error       string `json:"error,omitempty"`
	}

	Service struct {
		conf    *core.Config
		logger  core.Logger
		attSvc  *attendance.Service
		stdSvc  *student.Service
		smsSvc  core.SMSService
		mailSvc core.EmailService
		repo    Repository
	}
)

func NewService(
	conf *core.Config,
	logger core.Logger,
	attSvc *attendance.Service,
	stdSvc *student.Service,
	smsSvc core.SMSService,
	mailSvc core.EmailService,
	repo Repository,
) *Service {
	return &Service{
		conf:    conf,
		logger:  logger,
		attSvc:  attSvc,
		stdSvc:  stdSvc,
		smsSvc:  smsSvc,
		mailSvc: mailSvc,
		repo:    repo,
	}
}

// Today returns the current date in the school timezone.
func (svc *Service) Today() string {
	return time.Now().In(svc.conf.Location()).Format(attendance.DateLayout)
}

// BuildMessage formats the consolidated alert for one student:
// all of the day's issues in one message, not one message per course.
func BuildMessage(date, studentName string, statuses []attendance.Status, schoolPhone string) string {
	joined := make([]string, 0, len(statuses))
	for _, s := range statuses {
		joined = append(joined, string(s))
	}
	return fmt.Sprintf(
		"Attendance Alert for %s: %s was marked as %s. Please contact the school for more information at %s. (Do not reply)",
		attendance.FormatDate(date), studentName, strings.Join(joined, ", "), schoolPhone,
	)
}

// Run executes the notification pipeline for one date: read the day's
// record, consolidate issues per student, resolve guardian contacts and
// dispatch one SMS per flagged student. Per-student failures are contained
// and logged; only the daily-record read fails the whole run. A date with
// no record or no qualifying entries exits without contacting the provider.
func (svc *Service) Run(ctx context.Context, date string) ([]Outcome, error) {
	rec, err := svc.attSvc.GetDailyRecord(date)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			svc.logger.Info(fmt.Sprintf("alert run %s: no attendance record, nothing to do", date))
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading daily attendance record")
	}

	flagged := attendance.ConsolidateIssues(rec)
	if len(flagged) == 0 {
		svc.logger.Info(fmt.Sprintf("alert run %s: no attendance issues", date))
		return nil, nil
	}

	outcomes := make([]Outcome, 0, len(flagged))
	for _, si := range flagged {
		outcomes = append(outcomes, svc.notify(ctx, date, si))
	}

	svc.sendSummaryEmail(date, outcomes)
	return outcomes, nil
}

func (svc *Service) notify(ctx context.Context, date string, si attendance.StudentIssues) Outcome {
	out := Outcome{StudentID: si.StudentID, StudentName: si.StudentName}

	skip := func(reason string) Outcome {
		out.Skipped = reason
		svc.logger.Warn(fmt.Sprintf("alert run %s: student %s skipped: %s", date, si.StudentID, reason))
		return out
	}
	fail := func(err error, msg string) Outcome {
		out.Error = err.Error()
		svc.logger.Error(fmt.Sprintf("alert run %s: student %s: %s: %v", date, si.StudentID, msg, err), err)
		return out
	}

	if notified, err := svc.repo.WasNotified(date, si.StudentID); err != nil {
		return fail(err, "checking sent marker")
	} else if notified {
		return skip("already notified")
	}

	std, err := svc.stdSvc.GetByID(si.StudentID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return skip("no student record")
		}
		return fail(err, "fetching student record")
	}
	if out.StudentName == "" {
		out.StudentName = std.Name
	}

	phone, ok := std.PrimaryPhone()
	if !ok {
		return skip("no guardian phone on file")
	}
	normalized, ok := core.NormalizePhone(phone)
	if !ok {
		return skip("guardian phone did not normalize")
	}
	out.Phone = normalized

	msg := core.SMSMessage{
		To:   normalized,
		Body: BuildMessage(date, out.StudentName, si.Statuses(), svc.conf.School.Phone),
	}

	sendCtx, cancel := context.WithTimeout(ctx, svc.conf.SMS.SendTimeout)
	defer cancel()
	sid, err := svc.smsSvc.Send(sendCtx, msg)
	if err != nil {
		return fail(err, "sending SMS")
	}

	out.ProviderSID = sid
	svc.logger.Info(fmt.Sprintf("alert run %s: student %s notified, provider sid %s", date, si.StudentID, sid))

	if err = svc.repo.MarkNotified(date, si.StudentID, sid); err != nil {
		// the SMS went out; a failed marker only risks a duplicate on re-run
		svc.logger.Error(fmt.Sprintf("alert run %s: student %s: recording sent marker: %v", date, si.StudentID, err), err)
	}
	return out
}

func (svc *Service) sendSummaryEmail(date string, outcomes []Outcome) {
	if svc.mailSvc == nil || svc.conf.School.AdminEmail == "" {
		return
	}

	var sent, skipped, failed int
	body := new(strings.Builder)
	for _, out := range outcomes {
		switch {
		case out.ProviderSID != "":
			sent++
			_, _ = fmt.Fprintf(body, "%s: sent (%s)\n", out.StudentName, out.ProviderSID)
		case out.Error != "":
			failed++
			_, _ = fmt.Fprintf(body, "%s: failed: %s\n", out.StudentName, out.Error)
		default:
			skipped++
			_, _ = fmt.Fprintf(body, "%s: skipped: %s\n", out.StudentName, out.Skipped)
		}
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: svc.conf.School.AdminEmail}},
		Subject: fmt.Sprintf("Attendance alerts for %s: %d sent, %d skipped, %d failed", date, sent, skipped, failed),
		BodyStr: body.String(),
	})
}
