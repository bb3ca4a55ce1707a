// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Command radiolog keeps a radio contact log in a SQLite file.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/mdhender/sqlitestore/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
