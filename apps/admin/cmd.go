package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/schedule"
	"github.com/trezcool/kelasi/core/staff"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sql.DB
	staffRepo   staff.Repository
	staffSvc    *staff.Service
	cycles      cycle.Repository
	scheduleSvc *schedule.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run database migrations (goose commands)")
	fmt.Println("  addstaff -name NAME -email EMAIL [-admin] - create or update a staff account. The password will be prompted next.")
	fmt.Println("  resetpassword -email EMAIL - reset a staff member's password. The password will be prompted next.")
	fmt.Println("  syncprogress [-cycle ID] - reconcile progress counters (all active cycles by default)")
	fmt.Println("  worker [-schedule SPEC] - run syncprogress on a recurring schedule")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStaffCmd := flag.NewFlagSet("addstaff", flag.ExitOnError)
	addStaffName := addStaffCmd.String("name", "", "The staff member's full name.")
	addStaffEmail := addStaffCmd.String("email", "", "The staff member's email.")
	addStaffAdmin := addStaffCmd.Bool("admin", false, "Grant all roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The staff member's email. The password will be prompted next.")

	syncProgressCmd := flag.NewFlagSet("syncprogress", flag.ExitOnError)
	syncProgressCycle := syncProgressCmd.String("cycle", "", "Reconcile a single cycle by ID.")

	workerCmd := flag.NewFlagSet("worker", flag.ExitOnError)
	workerSchedule := workerCmd.String("schedule", "@daily", "Cron schedule spec for the reconciliation run.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addstaff":
		if err := addStaffCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStaffName == "" || *addStaffEmail == "" {
			addStaffCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addStaffCmd.Usage()
			return errHelp
		}
		return cli.addStaff(*addStaffName, *addStaffEmail, pwd, *addStaffAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "syncprogress":
		if err := syncProgressCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.syncProgress(context.Background(), *syncProgressCycle)
	case "worker":
		if err := workerCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.runWorker(*workerSchedule)
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
