package solver

import "fmt"

// Stats counts the work done by a solve. Generated includes the root;
// Visited <= Generated always holds.
type Stats struct {
	Generated uint64
	Visited   uint64
}

// Expanded is the number of states generated, under the name the CLI
// reports it.
func (st *Stats) Expanded() uint64 {
	return st.Generated
}

func (st *Stats) String() string {
	return fmt.Sprintf("%d expanded, %d visited", st.Generated, st.Visited)
}
