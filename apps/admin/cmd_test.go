package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"io/ioutil"
	"log"
	"strconv"
	"testing"

	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/schedule"
	"github.com/trezcool/kelasi/core/staff"
	calendarsvc "github.com/trezcool/kelasi/services/calendar"
	confsvc "github.com/trezcool/kelasi/services/conferencing"
	emailsvc "github.com/trezcool/kelasi/services/email"
	dummydb "github.com/trezcool/kelasi/storage/database/dummy"
	testutil "github.com/trezcool/kelasi/tests"
)

var (
	staffRepo   staff.Repository
	cycleRepo   cycle.Repository
	meetingRepo meeting.Repository
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	staffRepo = dummydb.NewStaffRepository(db)
	cycleRepo = dummydb.NewCycleRepository(db)
	meetingRepo = dummydb.NewMeetingRepository(db)

	conf := testutil.NewTestConfig()
	scheduleSvc := schedule.NewService(
		db,
		cycleRepo, meetingRepo,
		dummydb.NewRegistrationRepository(db),
		dummydb.NewLeadRepository(db),
		dummydb.NewInstructorRepository(db),
		calendarsvc.NewDummyService(),
		confsvc.NewDummyService(),
		emailsvc.NewConsoleServiceMock(conf),
		conf, nopLogger{},
	)

	logger = log.New(ioutil.Discard, "", 0)

	return &commandLine{
		staffRepo:   staffRepo,
		staffSvc:    staff.NewService(staffRepo),
		cycles:      cycleRepo,
		scheduleSvc: scheduleSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	origGooseRunFunc := gooseRunFunc
	defer func() { gooseRunFunc = origGooseRunFunc }()
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addStaff(t *testing.T) {
	cli := setup(t)

	origReadPasswordFunc := readPasswordFunc
	defer func() { readPasswordFunc = origReadPasswordFunc }()
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("LeP@ssw0rd"), nil }

	tests := []cliTest{
		{name: "no name", args: []string{"addstaff", "-email", "jo@test.cd"}, wantErr: errHelp},
		{name: "no email", args: []string{"addstaff", "-name", "Jo"}, wantErr: errHelp},
		{name: "create scheduler", args: []string{"addstaff", "-name", "Jo", "-email", "jo@test.cd"}},
		{name: "promote to admin", args: []string{"addstaff", "-name", "Jo", "-email", "jo@test.cd", "-admin"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}

			stf, err := staffRepo.GetStaffByEmail(context.Background(), "jo@test.cd")
			if err != nil {
				t.Fatalf("GetStaffByEmail() failed: %v", err)
			}
			if !stf.IsActive {
				t.Error("staff member should be active")
			}
			if tt.name == "promote to admin" && !stf.IsAdmin() {
				t.Errorf("staff roles = %v; want all roles", stf.Roles)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	stf := testutil.CreateStaff(t, staffRepo, "Jane", "jane@test.cd", "0ldP@ssword", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "staff not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: staff.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", stf.Email}, extra: extra{pwd: "NewP@ssw0rd"}},
	}

	origReadPasswordFunc := readPasswordFunc
	defer func() { readPasswordFunc = origReadPasswordFunc }()

	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := staffRepo.GetStaffByEmail(context.Background(), stf.Email)
				if err != nil {
					t.Fatalf("GetStaffByEmail() failed: %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, stf.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_syncProgress(t *testing.T) {
	cli := setup(t)

	cyc := testutil.CreateCycle(t, cycleRepo, cycle.Cycle{
		Name:              "Drifted",
		TotalMeetings:     3,
		CompletedMeetings: 0,
		RemainingMeetings: 3,
	})
	testutil.CreateMeeting(t, meetingRepo, meeting.Meeting{CycleID: cyc.ID, Status: meeting.StatusCompleted})
	testutil.CreateMeeting(t, meetingRepo, meeting.Meeting{CycleID: cyc.ID, Status: meeting.StatusCompleted})
	testutil.CreateMeeting(t, meetingRepo, meeting.Meeting{CycleID: cyc.ID})

	if err := cli.run([]string{"admin", "syncprogress"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	refreshed, err := cycleRepo.GetCycle(context.Background(), cyc.ID)
	if err != nil {
		t.Fatalf("GetCycle() failed: %v", err)
	}
	if refreshed.CompletedMeetings != 2 || refreshed.RemainingMeetings != 1 {
		t.Errorf("counters = (%d completed, %d remaining); want (2, 1)", refreshed.CompletedMeetings, refreshed.RemainingMeetings)
	}

	// single-cycle run
	if err := cli.run([]string{"admin", "syncprogress", "-cycle", cyc.ID}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if err := cli.run([]string{"admin", "syncprogress", "-cycle", "nope"}); err == nil {
		t.Error("cli.run() error = nil, expected an error for an unknown cycle")
	}
}
