package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/staff"
)

// addStaff updates or creates a staff.Staff account.
func (cli *commandLine) addStaff(name, uname, email, pwd string, isAdmin bool) error {
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	stf, err := cli.stfRepo.GetStaffByUsernameOrEmail(uname)
	if err != nil {
		if errors.Cause(err) != staff.ErrNotFound {
			return err
		}
		stf = staff.Staff{
			ID:        uuid.New().String(),
			CreatedAt: now,
		}
	}
	stf.Name = name
	stf.Username = uname
	stf.Email = email
	stf.UpdatedAt = now
	if isAdmin {
		stf.Roles = staff.AdminRoles
	} else if len(stf.Roles) == 0 {
		stf.Roles = staff.TeacherRoles
	}
	if err := stf.SetPassword(pwd); err != nil {
		return err
	}

	isActive := true
	if stf.CreatedAt.Equal(now) {
		stf.IsActive = true
		_, err = cli.stfRepo.CreateStaff(stf)
	} else {
		_, err = cli.stfRepo.UpdateStaff(stf, &isActive)
	}
	return err
}
