package automatic

import (
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/domino14/countdown/puzzles"
)

const schema = `
CREATE TABLE IF NOT EXISTS solves (
	batch_id   TEXT NOT NULL,
	puzzle_id  TEXT NOT NULL,
	tiles      TEXT NOT NULL,
	target     INTEGER NOT NULL,
	value      INTEGER NOT NULL,
	distance   INTEGER NOT NULL,
	rpn        TEXT NOT NULL,
	infix      TEXT NOT NULL,
	generated  INTEGER NOT NULL,
	visited    INTEGER NOT NULL,
	elapsed_us INTEGER NOT NULL,
	timed_out  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS solves_batch_idx ON solves (batch_id);
`

// Store records batch results in a sqlite database.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(batchID string, r *Result) error {
	rec := r.CSVRecord()
	_, err := s.db.Exec(`INSERT INTO solves (batch_id, puzzle_id, tiles, target,
		value, distance, rpn, infix, generated, visited, elapsed_us, timed_out)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID, rec[0], r.Puzzle.TilesString(), r.Puzzle.Target,
		r.Value, r.Distance, r.RPN, r.Infix, int64(r.Generated), int64(r.Visited),
		r.Elapsed.Microseconds(), r.TimedOut)
	return err
}

// Results returns the results recorded for a batch, in insertion order.
func (s *Store) Results(batchID string) ([]*Result, error) {
	rows, err := s.db.Query(`SELECT tiles, target, value, distance, rpn, infix,
		generated, visited, elapsed_us, timed_out FROM solves
		WHERE batch_id = ? ORDER BY rowid`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var tiles string
		var generated, visited, elapsed int64
		r := &Result{Puzzle: &puzzles.Puzzle{}}
		if err := rows.Scan(&tiles, &r.Puzzle.Target, &r.Value, &r.Distance,
			&r.RPN, &r.Infix, &generated, &visited, &elapsed, &r.TimedOut); err != nil {
			return nil, err
		}
		r.Puzzle.Tiles, err = puzzles.ParseTiles(strings.Fields(tiles))
		if err != nil {
			return nil, err
		}
		r.Generated = uint64(generated)
		r.Visited = uint64(visited)
		r.Elapsed = time.Duration(elapsed) * time.Microsecond
		results = append(results, r)
	}
	return results, rows.Err()
}
