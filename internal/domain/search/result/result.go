package result

import "github.com/margaritamap/margarita/internal/domain/venue"

// Source tells the presentation layer whether results are live or illustrative.
type Source string

// Result sources.
const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

// FallbackReason explains why placeholder venues were returned.
type FallbackReason string

// Fallback reasons.
const (
	ReasonNone              FallbackReason = ""
	ReasonProviderDenied    FallbackReason = "provider_denied"
	ReasonNoRelevantResults FallbackReason = "no_relevant_results"
	ReasonNoResults         FallbackReason = "no_results"
)

// Stats summarizes the fan-out behind a result.
type Stats struct {
	QueriesIssued int
	QueriesFailed int
	RawCandidates int
	UniqueVenues  int
	OutOfRadius   int
	FilteredOut   int
}

// RankedResult is the final ordered venue list of one search.
// The candidate order is the contract: callers must not reorder it.
type RankedResult struct {
	candidates []venue.Candidate
	source     Source
	reason     FallbackReason
	stats      Stats
}

// New creates a live result from ranked candidates.
func New(candidates []venue.Candidate, stats Stats) RankedResult {
	return RankedResult{candidates: candidates, source: SourceProvider, stats: stats}
}

// NewFallback creates a placeholder result.
func NewFallback(candidates []venue.Candidate, reason FallbackReason, stats Stats) RankedResult {
	return RankedResult{candidates: candidates, source: SourceFallback, reason: reason, stats: stats}
}

// Candidates returns the ranked venues.
func (r *RankedResult) Candidates() []venue.Candidate { return r.candidates }

// Len returns the number of ranked venues.
func (r *RankedResult) Len() int { return len(r.candidates) }

// Source returns whether the venues are live or placeholders.
func (r *RankedResult) Source() Source { return r.source }

// IsFallback reports whether the venues are placeholders.
func (r *RankedResult) IsFallback() bool { return r.source == SourceFallback }

// FallbackReason returns why placeholders were used (empty for live results).
func (r *RankedResult) FallbackReason() FallbackReason { return r.reason }

// Stats returns the fan-out summary.
func (r *RankedResult) Stats() Stats { return r.stats }
