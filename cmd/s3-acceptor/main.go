package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	acceptor "github.com/storageward/s3-acceptor"
	"github.com/storageward/s3-acceptor/exitcodes"
	"github.com/storageward/s3-acceptor/flags"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "s3-acceptor"
	app.Usage = "S3 Compatibility Test Runner"
	app.Description = "s3-acceptor runs compatibility tests against an S3-compatible endpoint"
	app.Flags = flags.RunnerFlags
	app.Action = run
	app.ExitErrHandler = exitHandler

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		os.Exit(exitcodes.RuntimeErr)
	}
}

func run(ctx *cli.Context) error {
	log := newLogger(ctx.Bool(flags.Verbose.Name))

	cfg, err := acceptor.NewRunConfig(ctx, log)
	if err != nil {
		return acceptor.NewRuntimeError(err)
	}
	app, err := acceptor.NewApp(cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx.Context, os.Stdout)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func exitHandler(c *cli.Context, err error) {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		cli.HandleExitCoder(exitErr)
	} else if err != nil {
		if acceptor.IsRuntimeError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		} else if acceptor.IsTestFailureError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
		} else {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
		}
	}
}
