// Package query implements the query engine's hybrid searcher (spec
// §4.5), which fuses vector similarity and BM25 keyword scores; the
// symbol resolver lives in package graph. Grounded on the teacher's
// internal/mcp/searcher_coordinator.go, whose Reload runs the vector
// and text index updates in two goroutines joined by a sync.WaitGroup;
// the same shape drives the semantic and keyword branches of Search.
package query

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cortexlocal/codeintel/internal/embedder"
	"github.com/cortexlocal/codeintel/internal/keywordindex"
	"github.com/cortexlocal/codeintel/internal/store"
	"github.com/cortexlocal/codeintel/internal/vectorstore"
)

// Mode selects the fusion strategy for Search, per spec §4.5.1.
type Mode string

const (
	ModeHybrid Mode = "hybrid"
	ModeRRF    Mode = "rrf"
)

const (
	// DefaultK is used when a request doesn't specify one.
	DefaultK = 10
	// DefaultAlpha weights the semantic branch in both fusion modes.
	DefaultAlpha = 0.7
	// kRRF is the reciprocal rank fusion smoothing constant.
	kRRF = 60
	// oversampleFactor controls how much wider than k each branch is
	// searched, so fusion has enough candidates from both sides.
	oversampleFactor = 2
)

// Request is one search_code call, per spec §6. A zero Alpha means
// "unspecified": Search falls back to the searcher's current default
// (0.7, or the Degraded-state override of 0). Pure keyword-only search
// is available via the searcher's Degraded-state override rather than
// an explicit per-request alpha=0.
type Request struct {
	Query          string
	K              int
	LanguageFilter string
	Mode           Mode
	Alpha          float64
}

// Result is one fused, ranked chunk, per spec §6's search_code response shape.
type Result struct {
	ChunkID       string  `json:"chunk_id"`
	RelativePath  string  `json:"relative_path"`
	StartLine     int     `json:"start_line"`
	EndLine       int     `json:"end_line"`
	Code          string  `json:"code"`
	SemScore      float64 `json:"sem_score"`
	KwScore       float64 `json:"kw_score"`
	CombinedScore float64 `json:"combined_score"`
}

// Searcher runs hybrid search over a dual index, embedding queries
// through the same provider used to embed documents.
type Searcher struct {
	index    *store.DualIndex
	provider embedder.Provider

	// mu protects alpha, which the query engine state machine may force
	// to 0 when the vector side is Degraded (spec §4.5.3).
	mu    sync.RWMutex
	alpha float64
}

// NewSearcher builds a Searcher with the spec's default alpha.
func NewSearcher(index *store.DualIndex, provider embedder.Provider) *Searcher {
	return &Searcher{index: index, provider: provider, alpha: DefaultAlpha}
}

// SetAlpha overrides the default fusion weight, used by the state
// machine to force α=0 in Degraded state.
func (s *Searcher) SetAlpha(alpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alpha = alpha
}

func (s *Searcher) currentAlpha() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alpha
}

// Search runs the semantic and keyword branches in parallel, fuses
// their scores, and returns the top k chunks, per spec §4.5.1.
func (s *Searcher) Search(ctx context.Context, req Request) ([]Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	k := req.K
	if k <= 0 {
		k = DefaultK
	}
	branchK := k * oversampleFactor

	alpha := req.Alpha
	if alpha == 0 {
		alpha = s.currentAlpha()
	}

	vecs, err := s.provider.Embed(ctx, []string{req.Query}, embedder.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	qv := vecs[0]

	var (
		wg         sync.WaitGroup
		semMatches []vectorstore.Match
		semErr     error
		kwMatches  []keywordindex.Result
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		if alpha == 0 {
			return
		}
		filter := vectorstore.Filter{Language: req.LanguageFilter}
		semMatches, semErr = s.index.SearchVector(qv, branchK, filter)
	}()

	go func() {
		defer wg.Done()
		kwMatches = s.index.SearchKeyword(req.Query, branchK)
	}()

	wg.Wait()
	if semErr != nil {
		return nil, fmt.Errorf("semantic search failed: %w", semErr)
	}

	if req.LanguageFilter != "" {
		kwMatches = filterKeywordByLanguage(s.index, kwMatches, req.LanguageFilter)
	}

	var fused map[string]Result
	switch req.Mode {
	case ModeRRF:
		fused = fuseRRF(semMatches, kwMatches, alpha)
	default:
		fused = fuseWeighted(semMatches, kwMatches, alpha)
	}

	results := make([]Result, 0, len(fused))
	ids := make([]string, 0, len(fused))
	for id := range fused {
		ids = append(ids, id)
	}
	chunks, err := s.index.GetChunks(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate chunks: %w", err)
	}
	for id, r := range fused {
		chunk, ok := chunks[id]
		if !ok {
			continue
		}
		r.ChunkID = id
		r.RelativePath = chunk.RelativePath
		r.StartLine = chunk.StartLine
		r.EndLine = chunk.EndLine
		r.Code = chunk.Code
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// filterKeywordByLanguage drops keyword matches whose chunk isn't in
// the requested language, since the keyword index has no language
// column of its own (spec §4.4.2's inverted index is text-only).
func filterKeywordByLanguage(idx *store.DualIndex, matches []keywordindex.Result, language string) []keywordindex.Result {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkID
	}
	chunks, err := idx.GetChunks(ids)
	if err != nil {
		return matches
	}
	out := matches[:0]
	for _, m := range matches {
		if c, ok := chunks[m.ChunkID]; ok && c.Language == language {
			out = append(out, m)
		}
	}
	return out
}

// fuseWeighted implements spec §4.5.1 step 3-4: semantic scores are
// already in [0,1]; keyword scores are min-max normalized over the
// returned batch, then combined = α·sem + (1-α)·kw.
func fuseWeighted(sem []vectorstore.Match, kw []keywordindex.Result, alpha float64) map[string]Result {
	normKw := minMaxNormalize(kw)

	out := make(map[string]Result)
	for _, m := range sem {
		out[m.ChunkID] = Result{SemScore: m.Similarity}
	}
	for _, k := range kw {
		r := out[k.ChunkID]
		r.KwScore = normKw[k.ChunkID]
		out[k.ChunkID] = r
	}
	for id, r := range out {
		r.CombinedScore = alpha*r.SemScore + (1-alpha)*r.KwScore
		out[id] = r
	}
	return out
}

// fuseRRF implements spec §4.5.1's alternative rank-only fusion:
// combined = α/(k_rrf+rank_sem) + (1-α)/(k_rrf+rank_kw).
func fuseRRF(sem []vectorstore.Match, kw []keywordindex.Result, alpha float64) map[string]Result {
	out := make(map[string]Result)
	for rank, m := range sem {
		r := out[m.ChunkID]
		r.SemScore = m.Similarity
		r.CombinedScore += alpha / float64(kRRF+rank+1)
		out[m.ChunkID] = r
	}
	for rank, k := range kw {
		r := out[k.ChunkID]
		r.KwScore = k.Score
		r.CombinedScore += (1 - alpha) / float64(kRRF+rank+1)
		out[k.ChunkID] = r
	}
	return out
}

// minMaxNormalize scales keyword scores into [0,1] over the batch. If
// every score is equal (max == min), normalized scores are all 0 per
// spec §4.5.1.
func minMaxNormalize(results []keywordindex.Result) map[string]float64 {
	out := make(map[string]float64, len(results))
	if len(results) == 0 {
		return out
	}

	min, max := results[0].Score, results[0].Score
	for _, r := range results {
		if r.Score < min {
			min = r.Score
		}
		if r.Score > max {
			max = r.Score
		}
	}

	for _, r := range results {
		if max == min {
			out[r.ChunkID] = 0
			continue
		}
		out[r.ChunkID] = (r.Score - min) / (max - min)
	}
	return out
}
