package tests

import (
	"os"
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/staff"
	"github.com/trezcool/mahudhurio/core/student"
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:  true,
		AppName:   "Mahudhurio",
		SecretKey: "s3cr3t-t3st-k3y",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		School: core.SchoolConfig{
			Name:  "Test School",
			Phone: "+16135550100",
		},
		SMS: core.SMSConfig{Sender: "+16135550199", SendTimeout: time.Second},
	}
	core.Conf = conf

	core.InitValidators()
	staff.RegisterValidators()
	student.RegisterValidators()
	attendance.RegisterValidators()
	staff.InitTokens(conf)

	os.Exit(m.Run())
}
