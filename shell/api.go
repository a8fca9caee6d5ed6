package shell

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/countdown/automatic"
	"github.com/domino14/countdown/config"
	"github.com/domino14/countdown/puzzles"
)

const defaultAutoplayPuzzles = 100

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 {
		return nil, errors.New("usage: solve [target tile1 tile2 ...]")
	}
	if len(cmd.args) > 1 {
		p, err := puzzles.Parse(cmd.args[0], cmd.args[1:])
		if err != nil {
			return nil, err
		}
		sc.curPuzzle = p
	}
	if sc.curPuzzle == nil {
		return nil, errNoPuzzle
	}
	timeout := sc.options.timeout
	if t, ok := cmd.options["timeout"]; ok {
		var err error
		timeout, err = time.ParseDuration(t)
		if err != nil {
			return nil, err
		}
	}
	r, err := automatic.SolvePuzzle(context.Background(), sc.curPuzzle, timeout)
	if err != nil {
		return nil, err
	}
	return msg(r.Report()), nil
}

func (sc *ShellController) deal(cmd *shellcmd) (*Response, error) {
	large := sc.options.large
	if len(cmd.args) > 0 {
		var err error
		large, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	p, err := puzzles.Deal(large)
	if err != nil {
		return nil, err
	}
	sc.curPuzzle = p
	return msg(p.String()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.curPuzzle == nil {
		return nil, errNoPuzzle
	}
	return msg(sc.curPuzzle.String()), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.options.ToDisplayText()), nil
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: set <option> <value>")
	}
	opt, val := cmd.args[0], cmd.args[1]
	switch opt {
	case "timeout":
		d, err := time.ParseDuration(val)
		if err != nil {
			return nil, err
		}
		sc.options.timeout = d
	case "large":
		l, err := strconv.Atoi(val)
		if err != nil {
			return nil, err
		}
		if l < 0 || l > puzzles.MaxLarge {
			return nil, puzzles.ErrNumLarge
		}
		sc.options.large = l
	default:
		return nil, fmt.Errorf("option %q not recognized", opt)
	}
	return msg("set " + opt + " to " + val), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 && cmd.args[0] == "stop" {
		if sc.batchCancel == nil {
			return nil, errors.New("no batch is running")
		}
		sc.batchCancel()
		<-sc.batchDone
		return msg("batch stopped"), nil
	}

	opts := automatic.BatchOptions{
		NumPuzzles: defaultAutoplayPuzzles,
		NumLarge:   sc.options.large,
		PuzzleFile: cmd.options["puzzles"],
		Timeout:    sc.options.timeout,
		Threads:    sc.config.GetInt(config.ConfigThreads),
		OutputFile: filepath.Join(sc.config.GetString(config.ConfigDataPath), "autoplay.csv"),
		DBPath:     sc.config.GetString(config.ConfigDBPath),
	}
	var err error
	if len(cmd.args) > 0 {
		if opts.NumPuzzles, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	if f, ok := cmd.options["file"]; ok {
		opts.OutputFile = f
	}
	if db, ok := cmd.options["db"]; ok {
		opts.DBPath = db
	}
	if l, ok := cmd.options["large"]; ok {
		if opts.NumLarge, err = strconv.Atoi(l); err != nil {
			return nil, err
		}
	}
	if t, ok := cmd.options["threads"]; ok {
		if opts.Threads, err = strconv.Atoi(t); err != nil {
			return nil, err
		}
	}
	if sc.batchRunning() || automatic.Running() {
		return nil, automatic.ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	sc.batchCancel = cancel
	sc.batchDone = make(chan struct{})
	go func() {
		defer close(sc.batchDone)
		defer cancel()
		batchID, err := automatic.RunBatch(ctx, opts)
		if err != nil {
			log.Err(err).Msg("batch-error")
			return
		}
		log.Info().Str("batch", batchID).Str("file", opts.OutputFile).
			Msg("batch-done; use `analyze` on the file for statistics")
	}()
	return msg("autoplay started; results will be written to " + opts.OutputFile), nil
}

// batchRunning is true from the moment autoplay starts a batch until its
// goroutine exits, including the window before RunBatch takes its guard.
func (sc *ShellController) batchRunning() bool {
	if sc.batchDone == nil {
		return false
	}
	select {
	case <-sc.batchDone:
		return false
	default:
		return true
	}
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: analyze <path/to/batch.csv>")
	}
	report, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(report), nil
}
