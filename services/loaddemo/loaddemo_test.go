package loaddemo

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"thermofuse-go/irq"
	"thermofuse-go/sched"
	"thermofuse-go/x/logx"
)

type countLog struct {
	logx.Logger
	n *atomic.Int32
}

func (c countLog) Debug(string, ...any)       { c.n.Add(1) }
func (c countLog) With(...any) logx.Logger { return c }

func TestBurstsRunPeriodically(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctl := irq.NewController()
	rt, err := sched.New(ctl, []sched.TierConfig{{Name: "high", PoolSize: 1}, {Name: "low", PoolSize: 1}})
	if err != nil {
		t.Fatal(err)
	}
	sp, err := rt.Start(ctx, 0, ctl.Line(26, "swi0"), 6)
	if err != nil {
		t.Fatal(err)
	}

	var n atomic.Int32
	err = Start([]Load{
		{Spawner: sp, Name: "high", Busy: time.Millisecond},
		{Spawner: sp, Name: "skipped", Busy: 0},
	}, countLog{Logger: logx.Nop(), n: &n})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("bursts = %d", n.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
