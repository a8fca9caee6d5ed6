// Command countdown solves a single Numbers round from the command line:
//
//	countdown -t 952 25 50 75 100 3 6
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/domino14/countdown/automatic"
	"github.com/domino14/countdown/puzzles"
)

func main() {
	fs := pflag.NewFlagSet("countdown", pflag.ContinueOnError)
	target := fs.IntP("target", "t", 0, "target number (required)")
	timeout := fs.Duration("timeout", 0, "give up after this long and print the best found so far")
	debug := fs.Bool("debug", false, "debug logging on")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Solves the Numbers round from the Countdown game show")
		fmt.Fprintln(os.Stderr, "usage: countdown -t TARGET NUMBER...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if !fs.Changed("target") {
		fs.Usage()
		os.Exit(2)
	}
	p, err := puzzles.Parse(strconv.Itoa(*target), fs.Args())
	if err != nil {
		log.Error().Err(err).Msg("bad-puzzle")
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := automatic.SolvePuzzle(ctx, p, *timeout)
	if err != nil {
		log.Error().Err(err).Msg("solve-interrupted")
		os.Exit(1)
	}
	fmt.Print(r.Report())
}
