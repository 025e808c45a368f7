package engine

import "fmt"

// Stats counts the work done by one search.
type Stats struct {
	Nodes     uint64 // every node entered, root included
	Leaves    uint64 // depth-0 nodes scored by Evaluate
	Terminals uint64 // game-over nodes
	Cutoffs   uint64 // sibling loops abandoned on beta <= alpha
}

// PerC formats n as a count and a percentage of N.
func PerC(n uint64, N uint64) string {
	if N == 0 {
		return fmt.Sprintf("%d [0.00%%]", n)
	}
	return fmt.Sprintf("%d [%.2f%%]", n, float64(n)/float64(N)*100)
}

func (s Stats) String() string {
	return fmt.Sprintf("nodes: %d leaves: %s terminals: %s cutoffs: %s",
		s.Nodes, PerC(s.Leaves, s.Nodes), PerC(s.Terminals, s.Nodes), PerC(s.Cutoffs, s.Nodes))
}
