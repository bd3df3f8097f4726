package main

import (
	"context"

	"github.com/robfig/cron/v3"
)

// runWorker blocks, running the counter reconciliation on the given cron
// schedule until the process is stopped.
func (cli *commandLine) runWorker(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := cli.syncProgress(context.Background(), ""); err != nil {
			logger.Printf("worker: %v", err)
		}
	})
	if err != nil {
		return err
	}

	logger.Printf("worker: running with schedule %q", schedule)
	c.Run()
	return nil
}
