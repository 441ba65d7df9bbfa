// Package scheduler owns the accrual cadence. The accrual service itself has
// no clock; this runner invokes it on a cron spec and guarantees that passes
// never overlap.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	accrualsvc "github.com/bablookumarmuz/Library-Management/service/accrual"
)

const passTimeout = 10 * time.Minute

type Scheduler struct {
	c   *cron.Cron
	log *slog.Logger
}

// New wires the accrual pass to the given cron spec. A tick that fires while
// the previous pass is still running is skipped, not queued.
func New(spec string, eng accrualsvc.Service, log *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
		defer cancel()

		rep, err := eng.Run(ctx, time.Now().UTC())
		if err != nil {
			log.Error("accrual pass failed", "err", err)
			return
		}
		log.Info("accrual pass done",
			"scanned", rep.ScannedLoans,
			"newly_overdue", rep.NewlyOverdue,
			"fines_created", rep.FinesCreated,
			"fines_updated", rep.FinesUpdated,
			"inconsistencies", rep.Inconsistencies,
			"failures", len(rep.Failures),
		)
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{c: c, log: log}, nil
}

func (s *Scheduler) Start() { s.c.Start() }

// Stop halts scheduling and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ log *slog.Logger }

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.Info("cron: "+msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{"err", err}, kv...)...)
}
