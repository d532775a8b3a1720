package schedule

import (
	"context"
	"worksync/config"
	"worksync/domain/namespace"
	"worksync/event"
	"worksync/indices"
	"worksync/persistence"

	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RedispatchBatchSize bounds the events retried by one run
const RedispatchBatchSize = 100

var (
	ReconcileProgressFunc  = namespace.ReconcileProjectsProgress
	TriggerIndexSyncFunc   = indices.TriggerSyncRun
	RedispatchUnsyncedFunc = event.RedispatchUnsynced
)

// StartCron registers the periodic jobs and starts the scheduler, an empty spec disables its job
func StartCron(cfg *config.ScheduleConfig) (*cron.Cron, error) {
	logger := cron.PrintfLogger(logrus.StandardLogger())
	crontab := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	jobs := []struct {
		name string
		spec string
		job  func()
	}{
		{"progress reconciliation", cfg.ProgressReconcileCron, reconcileProgress},
		{"index sync", cfg.IndexSyncCron, func() { TriggerIndexSyncFunc() }},
		{"event redispatch", cfg.EventRedispatchCron, redispatchEvents},
	}
	for _, j := range jobs {
		if j.spec == "" {
			logrus.Infof("cron job %s is disabled", j.name)
			continue
		}
		if _, err := crontab.AddFunc(j.spec, j.job); err != nil {
			return nil, err
		}
		logrus.Infof("cron job %s scheduled at '%s'", j.name, j.spec)
	}

	crontab.Start()
	return crontab, nil
}

func reconcileProgress() {
	fixed, err := ReconcileProgressFunc(context.Background())
	if err != nil {
		logrus.Errorf("progress reconciliation: %v", err)
		return
	}
	logrus.Infof("progress reconciliation: %d projects fixed", fixed)
}

func redispatchEvents() {
	n, err := RedispatchUnsyncedFunc(persistence.ActiveDataSourceManager.GormDB(context.Background()), RedispatchBatchSize)
	if err != nil {
		logrus.Errorf("event redispatch: %v", err)
		return
	}
	if n > 0 {
		logrus.Infof("event redispatch: %d events dispatched", n)
	}
}
