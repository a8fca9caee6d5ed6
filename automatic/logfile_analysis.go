package automatic

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/countdown/stats"
)

const histogramBins = 10

var errEmptyLog = errors.New("log file has no results")

// AnalyzeLogFile analyzes the given batch CSV file and spits out a bunch of
// statistics.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	r := csv.NewReader(file)

	header, err := r.Read()
	if err != nil {
		return "", err
	}
	col := map[string]int{}
	for i, h := range header {
		col[h] = i
	}
	for _, h := range []string{"distance", "visited", "generated", "elapsed_ms", "timed_out"} {
		if _, ok := col[h]; !ok {
			return "", fmt.Errorf("log file is missing column %q", h)
		}
	}

	visitedStats := &stats.Statistic{}
	elapsedStats := &stats.Statistic{}
	var visited, distances []float64
	var generated uint64
	exact, timedOut, solved := 0, 0, 0

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		dist, err := strconv.Atoi(record[col["distance"]])
		if err != nil {
			return "", err
		}
		v, err := strconv.ParseUint(record[col["visited"]], 10, 64)
		if err != nil {
			return "", err
		}
		gen, err := strconv.ParseUint(record[col["generated"]], 10, 64)
		if err != nil {
			return "", err
		}
		ms, err := strconv.ParseInt(record[col["elapsed_ms"]], 10, 64)
		if err != nil {
			return "", err
		}
		solved++
		if dist == 0 {
			exact++
		}
		if record[col["timed_out"]] == "true" {
			timedOut++
		}
		if dist >= 0 {
			distances = append(distances, float64(dist))
		}
		generated += gen
		visited = append(visited, float64(v))
		visitedStats.Push(float64(v))
		elapsedStats.Push(float64(ms))
	}
	if solved == 0 {
		return "", errEmptyLog
	}

	p := message.NewPrinter(language.English)
	var b bytes.Buffer
	p.Fprintf(&b, "Puzzles solved: %d\n", solved)
	p.Fprintf(&b, "Exact matches: %d (%.3f%%)\n", exact, 100.0*float64(exact)/float64(solved))
	p.Fprintf(&b, "Timed out: %d\n", timedOut)
	p.Fprintf(&b, "States generated: %d\n", generated)
	p.Fprintf(&b, "States visited: mean %.1f ± %.1f (95%% CI)  stdev %.1f  min %.0f  max %.0f\n",
		visitedStats.Mean(), visitedStats.ConfidenceInterval(95), visitedStats.Stdev(),
		visitedStats.Min(), visitedStats.Max())
	p.Fprintf(&b, "States visited: median %.0f  p90 %.0f\n",
		stats.Quantile(0.5, visited), stats.Quantile(0.9, visited))
	p.Fprintf(&b, "Elapsed: mean %.1f ms  stdev %.1f ms  max %.0f ms\n",
		elapsedStats.Mean(), elapsedStats.Stdev(), elapsedStats.Max())

	if d := stats.Quantile(0, distances); len(distances) > 0 && d == stats.Quantile(1, distances) {
		p.Fprintf(&b, "Distance to target: %.0f for all %d puzzles\n", d, len(distances))
	} else if len(distances) > 0 {
		b.WriteString("Distance to target:\n")
		hist := histogram.Hist(histogramBins, distances)
		if err := histogram.Fprint(&b, hist, histogram.Linear(40)); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
