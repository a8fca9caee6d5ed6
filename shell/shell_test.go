package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/countdown/automatic"
	"github.com/domino14/countdown/bot"
	"github.com/domino14/countdown/config"
	"github.com/domino14/countdown/puzzles"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.csv",
			&shellcmd{"autoplay", nil, map[string]string{"file": "/path/to/log.csv"}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, map[string]string{}},
			nil},
		{"autoplay 50 -large 2 -file 'my file.csv' ",
			&shellcmd{"autoplay",
				[]string{"50"},
				map[string]string{"large": "2", "file": "my file.csv"}},
			nil,
		},
		{"solve -5 1 2",
			&shellcmd{"solve", []string{"-5", "1", "2"}, map[string]string{}},
			nil},
		{"autoplay 10 -file",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func newTestShell(t *testing.T) (*ShellController, *bytes.Buffer) {
	cfg := &config.Config{}
	if err := cfg.Load([]string{"--data-path", t.TempDir()}); err != nil {
		t.Fatal(err)
	}
	sc := NewShellController(cfg, "", "v-test")
	out := &bytes.Buffer{}
	sc.out = out
	return sc, out
}

func TestSolveCommand(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell(t)
	sig := make(chan os.Signal, 1)

	is.True(sc.Execute(sig, "solve 100 2 3"))
	is.True(strings.Contains(out.String(), "Solution: 2 3 * = 6\n"))
	is.True(strings.Contains(out.String(), "Stats: 8 expanded, 8 visited\n"))

	out.Reset()
	is.True(sc.Execute(sig, "show"))
	is.Equal(out.String(), "2 3 -> 100\n")

	out.Reset()
	is.True(sc.Execute(sig, "solve 1"))
	is.True(strings.HasPrefix(out.String(), "Error: usage"))

	out.Reset()
	is.True(sc.Execute(sig, "solve 10 1 x"))
	is.True(strings.HasPrefix(out.String(), "Error: tiles must be"))
}

func TestSolveWithoutPuzzle(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell(t)
	sc.Execute(make(chan os.Signal, 1), "solve")
	is.Equal(out.String(), "Error: "+errNoPuzzle.Error()+"\n")
}

func TestDealAndSet(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell(t)
	sig := make(chan os.Signal, 1)

	is.True(sc.Execute(sig, "set large 4"))
	is.Equal(out.String(), "set large to 4\n")
	is.True(sc.Execute(sig, "deal"))
	is.Equal(len(sc.curPuzzle.Tiles), 6)
	bigs := 0
	for _, tile := range sc.curPuzzle.Tiles {
		if tile > 10 {
			bigs++
		}
	}
	is.Equal(bigs, 4)

	out.Reset()
	sc.Execute(sig, "set large 9")
	is.True(strings.HasPrefix(out.String(), "Error:"))
	out.Reset()
	sc.Execute(sig, "set timeout 2s")
	sc.Execute(sig, "set")
	is.True(strings.Contains(out.String(), "timeout: 2s\nlarge: 4\n"))
}

func TestHelpAndUnknown(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell(t)
	sig := make(chan os.Signal, 1)
	sc.Execute(sig, "help")
	is.True(strings.HasPrefix(out.String(), "commands:\n"))
	out.Reset()
	sc.Execute(sig, "help solve")
	is.True(strings.HasPrefix(out.String(), "solve [target"))
	out.Reset()
	sc.Execute(sig, "help nothing")
	is.Equal(out.String(), "Error: there is no help text for the topic nothing\n")
	out.Reset()
	sc.Execute(sig, "frobnicate")
	is.True(strings.HasPrefix(out.String(), "Error: command \"frobnicate\" not found"))
}

func TestExit(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	sig := make(chan os.Signal, 1)
	is.True(!sc.Execute(sig, "exit"))
	is.Equal(len(sig), 1)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	dir := t.TempDir()
	result := filepath.Join(dir, "result.txt")
	script := filepath.Join(dir, "test.lua")
	err := os.WriteFile(script, []byte(`
local json = require("json")
local r = countdown_solve("8 4 4")
local f = io.open("`+result+`", "w")
f:write(json.encode({report = r, shown = countdown_show("")}))
f:close()
`), 0644)
	is.NoErr(err)

	_, err = sc.script(&shellcmd{cmd: "script", args: []string{script}})
	is.NoErr(err)
	bts, err := os.ReadFile(result)
	is.NoErr(err)
	is.True(strings.Contains(string(bts), `4 4 + = 8`))
	// encoding/json escapes ">".
	is.True(strings.Contains(string(bts), `"shown":"4 4 -`))
}

func TestAutoplayAndAnalyze(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell(t)
	sig := make(chan os.Signal, 1)
	dir := t.TempDir()
	set := filepath.Join(dir, "set.yaml")
	is.NoErr(os.WriteFile(set, []byte("puzzles:\n  - tiles: [1, 2]\n    target: 3\n"), 0644))
	csvPath := filepath.Join(dir, "out.csv")

	sc.Execute(sig, "autoplay -puzzles "+set+" -file "+csvPath+" -threads 1")
	is.True(strings.HasPrefix(out.String(), "autoplay started"))
	<-sc.batchDone

	out.Reset()
	sc.Execute(sig, "analyze "+csvPath)
	is.True(strings.Contains(out.String(), "Puzzles solved: 1\n"))
}

func TestAutoplayTwiceRejected(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell(t)
	sig := make(chan os.Signal, 1)
	dir := t.TempDir()
	set := filepath.Join(dir, "slow.yaml")
	is.NoErr(puzzles.Save(set, []*puzzles.Puzzle{
		{Tiles: []int{1, 2, 3, 4, 5, 6}, Target: 100000},
	}))

	sc.Execute(sig, "set timeout 0s")
	out.Reset()
	// both commands run before the first batch can possibly finish.
	sc.Execute(sig, "autoplay -puzzles "+set+" -file "+filepath.Join(dir, "a.csv")+" -threads 1")
	is.True(strings.HasPrefix(out.String(), "autoplay started"))
	out.Reset()
	sc.Execute(sig, "autoplay -puzzles "+set+" -file "+filepath.Join(dir, "b.csv")+" -threads 1")
	is.Equal(out.String(), "Error: "+automatic.ErrAlreadyRunning.Error()+"\n")

	out.Reset()
	sc.Execute(sig, "autoplay stop")
	is.Equal(out.String(), "batch stopped\n")
	is.True(!sc.batchRunning())
}

func TestRemoteNeedsPuzzle(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := sc.dispatch(&shellcmd{cmd: "remote"})
	is.Equal(err, errNoPuzzle)
}

func TestFormatRemote(t *testing.T) {
	is := is.New(t)
	resp := &bot.SolveResponse{
		Value: 25, RPN: "25 50 + 3 /", Infix: "(25 + 50) / 3",
		Generated: 40, Visited: 12, ElapsedMS: 3, Cached: true,
	}
	is.Equal(formatRemote(resp), "Solution: 25 50 + 3 / = 25\n"+
		"Expression: (25 + 50) / 3\n"+
		"Elapsed: 3ms (cached: true)\n"+
		"Stats: 40 expanded, 12 visited")
}
