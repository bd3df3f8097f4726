package main

import (
	"context"
	"time"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/staff"
)

// addStaff updates or creates a staff.Staff
func (cli *commandLine) addStaff(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	stf, err := cli.staffRepo.GetStaffByEmail(ctx, email)
	if err != nil {
		if err != staff.ErrNotFound {
			return err
		}
		stf = staff.Staff{
			Name:      name,
			Email:     email,
			CreatedAt: now,
		}
	}
	if isAdmin {
		stf.Roles = staff.AllRoles
	} else if len(stf.Roles) == 0 {
		stf.Roles = []string{staff.RoleScheduler}
	}
	stf.IsActive = true
	stf.UpdatedAt = now
	if err := stf.SetPassword(pwd); err != nil {
		return err
	}

	if stf.ID == "" {
		_, err = cli.staffRepo.CreateStaff(ctx, stf)
	} else {
		_, err = cli.staffRepo.UpdateStaff(ctx, stf)
	}
	return err
}
