package candidate

import "github.com/poiesic/labmatch/core"

// Monitor provides hooks to observe candidate generation.
// Implement this interface to track intermediate results.
type Monitor interface {
	Start(query string)
	AfterLexical(labIDs []string)
	AfterSemantic(labIDs []string)
	Finish(candidates []core.CandidateEntry)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                   {}
func (n *noopMonitor) AfterLexical(_ []string)          {}
func (n *noopMonitor) AfterSemantic(_ []string)         {}
func (n *noopMonitor) Finish(_ []core.CandidateEntry) {}
