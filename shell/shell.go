package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/countdown/config"
	"github.com/domino14/countdown/puzzles"
)

const HistoryFile = "/tmp/countdown_readline.tmp"

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoPuzzle          = errors.New("please deal or give a puzzle first, e.g. `solve 952 25 50 75 100 3 6`")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	config     *config.Config
	execPath   string
	gitVersion string

	curPuzzle *puzzles.Puzzle
	options   *ShellOptions

	batchCancel context.CancelFunc
	batchDone   chan struct{}
}

// ShellOptions are the settings changeable with the `set` command.
type ShellOptions struct {
	timeout time.Duration
	large   int
}

func (so *ShellOptions) ToDisplayText() string {
	return fmt.Sprintf("timeout: %v\nlarge: %d", so.timeout, so.large)
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	return &ShellController{
		out:        os.Stdout,
		config:     cfg,
		execPath:   execPath,
		gitVersion: gitVersion,
		options: &ShellOptions{
			timeout: cfg.GetDuration(config.ConfigSolveTimeout),
			large:   cfg.GetInt(config.ConfigLargeNumbers),
		},
	}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func (sc *ShellController) showMessage(msg string) {
	io.WriteString(sc.out, msg)
	io.WriteString(sc.out, "\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its positional arguments,
// and its `-key value` options. Negative numbers are arguments, not
// options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for idx := 1; idx < len(fields); idx++ {
		f := fields[idx]
		if strings.HasPrefix(f, "-") && !isNumber(f) {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[f[1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, f)
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "solve":
		return sc.solve(cmd)
	case "deal":
		return sc.deal(cmd)
	case "show":
		return sc.show(cmd)
	case "set":
		return sc.set(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "analyze":
		return sc.analyze(cmd)
	case "script":
		return sc.script(cmd)
	case "remote":
		return sc.remote(cmd)
	case "help":
		return sc.help(cmd)
	case "version":
		return msg(sc.gitVersion), nil
	}
	log.Debug().Msgf("you said: %v", strconv.Quote(cmd.cmd))
	return nil, fmt.Errorf("command %q not found; try `help`", cmd.cmd)
}

// Execute runs a single line. It returns false if the shell should quit.
func (sc *ShellController) Execute(sig chan os.Signal, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if line == "exit" || line == "bye" {
		sig <- syscall.SIGINT
		return false
	}
	cmd, err := extractFields(line)
	if err != nil {
		sc.showError(err)
		return true
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		sc.showError(err)
		return true
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return true
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mcountdown>\033[0m ",
		HistoryFile:     HistoryFile,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		log.Error().Err(err).Msg("could not start readline")
		sig <- syscall.SIGINT
		return
	}
	sc.l = l
	sc.out = l.Stderr()
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		if !sc.Execute(sig, line) {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
