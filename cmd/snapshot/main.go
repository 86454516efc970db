package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/screwyprof/airdrop/snapshot/config"
)

var (
	version = "dev"
	date    = "unknown"
)

// Exit codes
const (
	exitOK      = 0
	exitPartial = 1 // at least one address failed under collect-all
	exitFatal   = 2 // the run did not complete; the output file may still exist
)

func main() {
	// A missing .env is fine; real environment variables win
	_ = godotenv.Load()

	app := newApp(config.New(), os.Stdout, os.Stderr)
	os.Exit(exitCode(app.Run(os.Args)))
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(os.Stderr, err)

	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return exitFatal
}
