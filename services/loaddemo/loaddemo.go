// Package loaddemo spawns busy tasks on every tier so preemption shows up on
// the activity LED and in the logs.
package loaddemo

import (
	"time"

	"thermofuse-go/sched"
	"thermofuse-go/x/logx"
	"thermofuse-go/x/timex"
)

// Period between bursts.
const Period = 100 * time.Millisecond

// Load is one tier's burst.
type Load struct {
	Spawner sched.Spawner
	Name    string
	Busy    time.Duration
}

// Start spawns one task per load.
func Start(loads []Load, log logx.Logger) error {
	log = logx.OrNop(log).With("svc", "loaddemo")
	for _, l := range loads {
		if l.Busy <= 0 {
			continue
		}
		if err := l.Spawner.Spawn("load-"+l.Name, func(t *sched.Task) { run(t, l, log) }); err != nil {
			return err
		}
	}
	return nil
}

func run(t *sched.Task, l Load, log logx.Logger) {
	for {
		if err := t.Sleep(Period); err != nil {
			return
		}
		timex.Spin(l.Busy)
		log.Debug("burst", "tier", l.Name, "busy_ms", l.Busy.Milliseconds())
	}
}
