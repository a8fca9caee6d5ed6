package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/countdown/automatic"
	"github.com/domino14/countdown/bot"
	"github.com/domino14/countdown/config"
	"github.com/domino14/countdown/puzzles"
)

var cfg *config.Config
var nc *nats.Conn

const HardTimeLimit = 180 * time.Second

func HandleRequest(ctx context.Context, evt bot.LambdaEvent) (string, error) {
	logger := log.With().Ints("tiles", evt.Tiles).Int("target", evt.Target).Logger()

	if len(evt.Tiles) == 0 {
		return "", puzzles.ErrNoTiles
	}
	for _, t := range evt.Tiles {
		if t < 0 {
			return "", puzzles.ErrBadTile
		}
	}
	p := &puzzles.Puzzle{Tiles: evt.Tiles, Target: evt.Target}

	timeout := cfg.GetDuration(config.ConfigSolveTimeout)
	if evt.TimeoutMS > 0 {
		timeout = time.Duration(evt.TimeoutMS) * time.Millisecond
	}
	if timeout <= 0 || timeout > HardTimeLimit {
		timeout = HardTimeLimit
	}

	r, err := automatic.SolvePuzzle(ctx, p, timeout)
	if err != nil {
		return "", err
	}
	logger.Info().Int("value", r.Value).Bool("timed-out", r.TimedOut).
		Uint64("visited", r.Visited).Msg("solved")
	if r.NoValue() {
		return "", fmt.Errorf("no value reachable from %v", evt.Tiles)
	}

	if evt.ReplyChannel != "" && nc != nil {
		data, err := json.Marshal(bot.NewSolveResponse(r))
		if err != nil {
			return "", err
		}
		logger.Info().Msg("solve-success-sending-via-nats")
		err = retry.Do(
			func() error {
				// We're just waiting for an acknowledgement. The actual
				// data doesn't matter.
				_, err := nc.Request(evt.ReplyChannel, data, 3*time.Second)
				return err
			},
			retry.Context(ctx),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				logger.Err(err).Uint("n", n).Msg("did-not-receive-ack-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			logger.Err(err).Msg("reply-failed")
		}
	}
	logger.Info().Msg("exiting-fn")
	return fmt.Sprintf("%s = %d", r.Infix, r.Value), nil
}

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg = &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.AdjustRelativePaths(exPath)
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded config")
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	nc, err = bot.Connect(context.Background(), cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
	}

	lambda.Start(HandleRequest)
}
