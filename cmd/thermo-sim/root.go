//go:build !(rp2040 || rp2350)

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"thermofuse-go/app"
	"thermofuse-go/board"
	"thermofuse-go/config"
	"thermofuse-go/services/fusion"
	"thermofuse-go/x/logx"
)

var (
	cfgFile  string
	duration time.Duration
	logLevel string
	loadDemo bool
	ambient  float64
	swing    float64
)

var rootCmd = &cobra.Command{
	Use:   "thermo-sim",
	Short: "Run the temperature fusion firmware on a simulated board",
	Long: `thermo-sim boots the firmware with simulated LM75, DS3231, BME280 and
DHT22 sensors and prints every fused temperature. Configuration comes from
the built-in defaults, an optional --config file and THERMOFUSE_* variables.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	f.DurationVarP(&duration, "duration", "d", 0, "stop after this long (0 runs until interrupted)")
	f.StringVar(&logLevel, "log-level", "", "override log level (trace, debug, info, warn, error)")
	f.BoolVar(&loadDemo, "load-demo", false, "spawn busy tasks on every tier")
	f.Float64Var(&ambient, "ambient", 21, "simulated ambient temperature in °C")
	f.Float64Var(&swing, "swing", 2, "amplitude of the simulated ambient drift in °C")
}

func run(cmd *cobra.Command, _ []string) error {
	v := config.NewViper(cfgFile)
	if logLevel != "" {
		v.Set("log.level", logLevel)
	}
	if loadDemo {
		v.Set("load_demo.enabled", true)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	lvl, _ := logx.ParseLevel(cfg.Log.Level)
	log := logx.New(os.Stderr, lvl)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sim := board.NewSim(float32(ambient))
	a, err := app.Boot(ctx, sim.Board(), cfg, log, app.WithFatal(func(err error) {
		cancel(err)
	}))
	if err != nil {
		return err
	}

	go drift(ctx, sim)
	go printFused(ctx, cmd, a)

	if err := a.Run(ctx); err != nil {
		return err
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		return errors.Wrap(cause, "halted")
	}
	for _, st := range a.Runtime.Stats() {
		log.Info("tier stats", "tier", st.Name, "polls", st.Polls, "live", st.Live)
	}
	bs := a.Arbiter.Stats()
	log.Info("bus stats", "transactions", bs.Transactions, "errors", bs.Errors, "led_toggles", sim.LED.Toggles())
	return nil
}

// drift moves the simulated ambient slowly along a sine wave.
func drift(ctx context.Context, sim *board.Sim) {
	start := time.Now()
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			phase := now.Sub(start).Seconds() / 60 * 2 * math.Pi
			sim.SetAmbient(float32(ambient + swing*math.Sin(phase)))
		}
	}
}

func printFused(ctx context.Context, cmd *cobra.Command, a *app.App) {
	sub := a.Bus.NewConnection("cli").Subscribe(fusion.TopicFused)
	defer sub.Unsubscribe()
	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			if v, ok := m.Payload.(float32); ok {
				fmt.Fprintf(out, "%s fused %.3f °C\n", time.Now().Format("15:04:05.000"), v)
			}
		}
	}
}
