package main

import (
	"context"
	"time"

	"thermofuse-go/app"
	"thermofuse-go/board"
	"thermofuse-go/config"
	"thermofuse-go/x/logx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	b, err := board.Open()
	if err != nil {
		halt("board: " + err.Error())
	}
	cfg, err := config.ForBoard(b.ID)
	if err != nil {
		halt(err.Error())
	}
	lvl, _ := logx.ParseLevel(cfg.Log.Level)
	log := logx.New(b.Log, lvl)

	ctx := context.Background()
	a, err := app.Boot(ctx, b, cfg, log, app.WithFatal(func(err error) {
		log.Error("fatal", "err", err)
		halt(err.Error())
	}))
	if err != nil {
		halt(err.Error())
	}
	_ = a.Run(ctx)
}

// halt parks the processor after an unrecoverable error.
func halt(msg string) {
	println("Error:", msg)
	select {}
}
