package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/domino14/countdown/bot"
	"github.com/domino14/countdown/config"
)

const remoteRequestTimeout = time.Minute

// remote hands the current puzzle to a running bot over NATS.
func (sc *ShellController) remote(cmd *shellcmd) (*Response, error) {
	if sc.curPuzzle == nil {
		return nil, errNoPuzzle
	}
	ctx, cancel := context.WithTimeout(context.Background(), remoteRequestTimeout)
	defer cancel()
	nc, err := bot.Connect(ctx, sc.config.GetString(config.ConfigNatsURL))
	if err != nil {
		return nil, err
	}
	defer nc.Close()

	req := &bot.SolveRequest{
		Tiles:     sc.curPuzzle.Tiles,
		Target:    sc.curPuzzle.Target,
		TimeoutMS: int(sc.options.timeout.Milliseconds()),
	}
	client := bot.NewClient(nc, sc.config.GetString(config.ConfigNatsSubject))
	resp, err := client.RequestSolve(req, remoteRequestTimeout)
	if err != nil {
		return nil, err
	}
	return msg(formatRemote(resp)), nil
}

func formatRemote(resp *bot.SolveResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Solution: %s = %d\n", resp.RPN, resp.Value)
	fmt.Fprintf(&sb, "Expression: %s\n", resp.Infix)
	if resp.TimedOut {
		sb.WriteString("Timed out; best found so far\n")
	}
	fmt.Fprintf(&sb, "Elapsed: %dms (cached: %v)\n", resp.ElapsedMS, resp.Cached)
	fmt.Fprintf(&sb, "Stats: %d expanded, %d visited", resp.Generated, resp.Visited)
	return sb.String()
}
