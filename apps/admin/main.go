package main

import (
	"log"
	"os"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/schedule"
	"github.com/trezcool/kelasi/core/staff"
	calendarsvc "github.com/trezcool/kelasi/services/calendar"
	confsvc "github.com/trezcool/kelasi/services/conferencing"
	emailsvc "github.com/trezcool/kelasi/services/email"
	logsvc "github.com/trezcool/kelasi/services/logger"
	"github.com/trezcool/kelasi/storage/database"
	sqlxrepos "github.com/trezcool/kelasi/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, svcLogger)
	}
	cycleRepo := sqlxrepos.NewCycleRepository(db.DB)
	staffRepo := sqlxrepos.NewStaffRepository(db.DB)
	scheduleSvc := schedule.NewService(
		db,
		cycleRepo,
		sqlxrepos.NewMeetingRepository(db.DB),
		sqlxrepos.NewRegistrationRepository(db.DB),
		sqlxrepos.NewLeadRepository(db.DB),
		sqlxrepos.NewInstructorRepository(db.DB),
		calendarsvc.NewService(conf, svcLogger),
		confsvc.NewService(conf),
		mailSvc,
		conf,
		svcLogger,
	)

	// start CLI
	cli := commandLine{
		db:          db.DB.DB,
		staffRepo:   staffRepo,
		staffSvc:    staff.NewService(staffRepo),
		cycles:      cycleRepo,
		scheduleSvc: scheduleSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
