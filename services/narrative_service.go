package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/DrvDispatch/Foodly-sub000/utils"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultNarrativeTTL bounds how stale a cached narrative may be: a hit
// can return text phrased before the most recent meal log, up to this age.
const DefaultNarrativeTTL = 30 * time.Minute

const narrativeCacheSize = 512

// Phraser turns a structured signal into prose. Implemented by the
// external text-phrasing collaborator; this package never generates
// language itself.
type Phraser interface {
	Phrase(ctx context.Context, req PhraseRequest) (string, error)
}

type PhraseRequest struct {
	Signal      *utils.Signal `json:"signal"`
	DetailLevel string        `json:"detail_level"` // "brief"|"full"
	UserID      uint          `json:"user_id"`
}

type Narrative struct {
	Text        string    `json:"text"`
	TraceID     string    `json:"trace_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}

// NarrativeService fronts the phrasing collaborator with a TTL'd LRU.
// Single writer last wins; there is no invalidation on new data — the TTL
// is the only staleness bound.
type NarrativeService struct {
	phraser Phraser
	cache   *expirable.LRU[string, Narrative]
}

func NewNarrativeService(p Phraser, ttl time.Duration) *NarrativeService {
	if ttl <= 0 {
		ttl = DefaultNarrativeTTL
	}
	return &NarrativeService{
		phraser: p,
		cache:   expirable.NewLRU[string, Narrative](narrativeCacheSize, nil, ttl),
	}
}

// Narrate returns the cached narrative for an equivalent signal when one
// is fresh enough, otherwise asks the phraser and caches the result.
func (s *NarrativeService) Narrate(ctx context.Context, req PhraseRequest) (Narrative, error) {
	if req.Signal == nil {
		return Narrative{}, errors.New("nil signal")
	}

	key := cacheKey(req)
	if hit, ok := s.cache.Get(key); ok {
		hit.Cached = true
		return hit, nil
	}

	text, err := s.phraser.Phrase(ctx, req)
	if err != nil {
		return Narrative{}, err
	}
	n := Narrative{
		Text:        text,
		TraceID:     uuid.NewString(),
		GeneratedAt: time.Now(),
	}
	s.cache.Add(key, n)
	return n, nil
}

// cacheKey is signal-type:detail-level:user-id:fact-hash. Equal fact bags
// hash equally regardless of map order.
func cacheKey(req PhraseRequest) string {
	return fmt.Sprintf("%s:%s:%d:%x", req.Signal.Kind, req.DetailLevel, req.UserID, factHash(req.Signal))
}

func factHash(sig *utils.Signal) uint64 {
	keys := make([]string, 0, len(sig.Facts))
	for k := range sig.Facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|", sig.Kind, sig.Priority)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, sig.Facts[k])
	}
	return h.Sum64()
}
