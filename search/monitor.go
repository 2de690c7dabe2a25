package search

import "github.com/poiesic/findit/core"

// BuildMonitor provides hooks to observe the context building process.
// Implement this interface to track strategy choice and candidate
// selection as a build progresses.
type BuildMonitor interface {
	Start(query string, poolSize int)
	StrategySelected(strategy core.Strategy)
	AfterKeywordPrefilter(narrowed []*core.AuditRecord)
	AfterSelection(selected []core.ScoredCandidate)
	Truncated(omitted int)
	Finish(result *core.ContextBuildResult)
}

// noopMonitor is a no-op implementation of BuildMonitor
type noopMonitor struct{}

var _ BuildMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                       {}
func (n *noopMonitor) StrategySelected(_ core.Strategy)            {}
func (n *noopMonitor) AfterKeywordPrefilter(_ []*core.AuditRecord) {}
func (n *noopMonitor) AfterSelection(_ []core.ScoredCandidate)     {}
func (n *noopMonitor) Truncated(_ int)                             {}
func (n *noopMonitor) Finish(_ *core.ContextBuildResult)           {}
