// Package bot serves solve requests over NATS.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/countdown/automatic"
	"github.com/domino14/countdown/cache"
	"github.com/domino14/countdown/config"
	"github.com/domino14/countdown/puzzles"
)

const (
	QueueGroup       = "countdown-solvers"
	CacheSize        = 10000
	MaxTimeout       = 5 * time.Minute
	ConnectAttempts  = 10
	shutdownDrainFor = 10 * time.Second
)

var (
	ErrBadRequest = errors.New("bad solve request")
	errTimedOut   = errors.New("solve timed out")
)

type SolveRequest struct {
	Tiles     []int `json:"tiles"`
	Target    int   `json:"target"`
	TimeoutMS int   `json:"timeout_ms,omitempty"`
}

type SolveResponse struct {
	PuzzleID  string `json:"puzzle_id,omitempty"`
	Value     int    `json:"value"`
	Distance  int    `json:"distance"`
	Exact     bool   `json:"exact"`
	RPN       string `json:"rpn"`
	Infix     string `json:"infix"`
	Generated uint64 `json:"generated"`
	Visited   uint64 `json:"visited"`
	ElapsedMS int64  `json:"elapsed_ms"`
	TimedOut  bool   `json:"timed_out,omitempty"`
	Cached    bool   `json:"cached,omitempty"`
	Error     string `json:"error,omitempty"`
}

func errorResponse(message string, err error) *SolveResponse {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &SolveResponse{Error: msg}
}

// LambdaEvent is the payload of a one-shot solve run as a Lambda function.
// The answer is sent to ReplyChannel if one is given.
type LambdaEvent struct {
	Tiles        []int  `json:"tiles"`
	Target       int    `json:"target"`
	TimeoutMS    int    `json:"timeout_ms,omitempty"`
	ReplyChannel string `json:"reply_channel,omitempty"`
}

func NewSolveResponse(r *automatic.Result) *SolveResponse {
	return &SolveResponse{
		PuzzleID:  strconv.FormatUint(r.Puzzle.ID(), 16),
		Value:     r.Value,
		Distance:  r.Distance,
		Exact:     r.Exact(),
		RPN:       r.RPN,
		Infix:     r.Infix,
		Generated: r.Generated,
		Visited:   r.Visited,
		ElapsedMS: r.Elapsed.Milliseconds(),
		TimedOut:  r.TimedOut,
	}
}

type Bot struct {
	config  *config.Config
	results *cache.Cache[*SolveResponse]
	// sem bounds the number of solves running at once.
	sem chan struct{}
}

func NewBot(cfg *config.Config) *Bot {
	return &Bot{
		config:  cfg,
		results: cache.New[*SolveResponse](CacheSize),
		sem:     make(chan struct{}, max(1, cfg.GetInt(config.ConfigThreads))),
	}
}

func (b *Bot) parseRequest(data []byte) (*puzzles.Puzzle, time.Duration, error) {
	req := &SolveRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if len(req.Tiles) == 0 {
		return nil, 0, fmt.Errorf("%w: %w", ErrBadRequest, puzzles.ErrNoTiles)
	}
	for _, t := range req.Tiles {
		if t < 0 {
			return nil, 0, fmt.Errorf("%w: %w", ErrBadRequest, puzzles.ErrBadTile)
		}
	}
	timeout := b.config.GetDuration(config.ConfigSolveTimeout)
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}
	timeout = min(timeout, MaxTimeout)
	return &puzzles.Puzzle{Tiles: req.Tiles, Target: req.Target}, timeout, nil
}

// Handle solves the JSON-encoded request in data. Completed solves are
// cached by puzzle; solves cut short by their timeout are not.
func (b *Bot) Handle(ctx context.Context, data []byte) *SolveResponse {
	p, timeout, err := b.parseRequest(data)
	if err != nil {
		solvesTotal.WithLabelValues(resultError).Inc()
		return errorResponse("could not parse request", err)
	}
	key := strconv.FormatUint(p.ID(), 16)
	loaded := false
	resp, err := b.results.Get(key, func(string) (*SolveResponse, error) {
		loaded = true
		b.sem <- struct{}{}
		defer func() { <-b.sem }()

		r, err := automatic.SolvePuzzle(ctx, p, timeout)
		if err != nil {
			return nil, err
		}
		observe(r)
		resp := NewSolveResponse(r)
		if r.TimedOut {
			return resp, errTimedOut
		}
		return resp, nil
	})
	if err != nil && !errors.Is(err, errTimedOut) {
		solvesTotal.WithLabelValues(resultError).Inc()
		return errorResponse("could not solve", err)
	}
	out := *resp
	out.Cached = !loaded
	if out.Cached {
		solvesTotal.WithLabelValues(resultCached).Inc()
	}
	log.Info().Str("puzzle", p.String()).Int("value", out.Value).
		Bool("cached", out.Cached).Bool("timed-out", out.TimedOut).Msg("solve-request")
	return &out
}

func (b *Bot) respond(ctx context.Context, m *nats.Msg) {
	resp := b.Handle(ctx, m.Data)
	data, err := json.Marshal(resp)
	if err != nil {
		// Should never happen, ideally, but we need to do something sensible here.
		m.Respond([]byte(`{"error":"` + err.Error() + `"}`))
		return
	}
	if err := m.Respond(data); err != nil {
		log.Err(err).Msg("respond-failed")
	}
}

// Connect dials NATS, retrying with backoff.
func Connect(ctx context.Context, url string) (*nats.Conn, error) {
	return retry.DoWithData(
		func() (*nats.Conn, error) {
			return nats.Connect(url, nats.Name("countdown-bot"))
		},
		retry.Context(ctx),
		retry.Attempts(ConnectAttempts),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("url", url).Msg("nats-connect-failed")
		}),
	)
}

// Serve listens for solve requests until ctx is done.
func (b *Bot) Serve(ctx context.Context) error {
	url := b.config.GetString(config.ConfigNatsURL)
	subject := b.config.GetString(config.ConfigNatsSubject)
	nc, err := Connect(ctx, url)
	if err != nil {
		return err
	}
	defer nc.Close()

	sub, err := nc.QueueSubscribe(subject, QueueGroup, func(m *nats.Msg) {
		log.Debug().Msgf("RECV: %d bytes", len(m.Data))
		go b.respond(ctx, m)
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	log.Info().Msgf("Listening on [%s]", subject)

	<-ctx.Done()
	log.Info().Msg("bot shutting down")
	if err := sub.Drain(); err != nil {
		log.Err(err).Msg("drain-failed")
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownDrainFor)
	defer cancel()
	for i := 0; i < cap(b.sem); i++ {
		select {
		case b.sem <- struct{}{}:
		case <-drainCtx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}
