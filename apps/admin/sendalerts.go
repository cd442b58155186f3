package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

// sendAlerts runs the notification pipeline for one date; this is the
// entrypoint weekday cron invokes after classes.
func (cli *commandLine) sendAlerts(ctx context.Context, date string) error {
	date = core.CleanString(date)
	if date == "" {
		date = cli.alertSvc.Today()
	} else if _, err := time.Parse(attendance.DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q; expected YYYY-MM-DD", date)
	}

	outcomes, err := cli.alertSvc.Run(ctx, date)
	if err != nil {
		return err
	}

	var sent, skipped, failed int
	for _, out := range outcomes {
		switch {
		case out.ProviderSID != "":
			sent++
		case out.Error != "":
			failed++
		default:
			skipped++
		}
	}
	stdLogger.Printf("alerts for %s: %d sent, %d skipped, %d failed\n", date, sent, skipped, failed)
	return nil
}
