package ingest

import (
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/feature-prep/vocab-builder/internal/vocab/accumulate"
	"github.com/feature-prep/vocab-builder/pkg/logger"
)

// Pool shards accumulation across independently-locked maps so that many
// concurrent consumers can observe records without contending on a single
// mutex. Tokens are routed by hash, which keeps the shard maps disjoint;
// the drain merge is therefore trivially order-independent.
type Pool struct {
	shards []*poolShard
	logger *slog.Logger

	observed uint64
	rejected uint64
	statsMu  sync.Mutex
}

type poolShard struct {
	mu sync.Mutex
	m  *accumulate.Map
}

// NewPool creates a Pool with the given number of shards for the profile.
func NewPool(shards int, profile accumulate.Profile) *Pool {
	if shards <= 0 {
		shards = 8
	}
	p := &Pool{
		shards: make([]*poolShard, shards),
		logger: logger.WithComponent("accumulator-pool"),
	}
	for i := range p.shards {
		p.shards[i] = &poolShard{m: accumulate.NewMap(profile)}
	}
	return p
}

// Observe routes one normalised record to its shard. It returns false when
// the token failed validation and was skipped.
func (p *Pool) Observe(n Normalized) bool {
	shard := p.shards[p.shardFor(n.Token)]
	shard.mu.Lock()
	var ok bool
	if n.Labeled {
		ok = shard.m.ObserveLabeled(n.Token, n.Weight, n.Positive)
	} else {
		ok = shard.m.Observe(n.Token, n.Weight)
	}
	shard.mu.Unlock()

	p.statsMu.Lock()
	if ok {
		p.observed++
	} else {
		p.rejected++
	}
	p.statsMu.Unlock()
	return ok
}

// Drain merges every shard into a single global map. The pool must not be
// observed into afterwards.
func (p *Pool) Drain() (*accumulate.Map, error) {
	global := accumulate.NewMap(p.shards[0].m.Profile())
	for _, shard := range p.shards {
		shard.mu.Lock()
		err := global.Merge(shard.m)
		shard.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	observed, rejected := p.Counts()
	p.logger.Info("pool drained",
		"shards", len(p.shards),
		"distinct_tokens", global.Len(),
		"records_observed", observed,
		"records_rejected", rejected,
	)
	return global, nil
}

// Shards returns the number of partition shards, which is also the number of
// merges a drain performs.
func (p *Pool) Shards() int { return len(p.shards) }

// Counts returns how many records were observed and how many were rejected
// by the validity rule.
func (p *Pool) Counts() (observed, rejected uint64) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.observed, p.rejected
}

func (p *Pool) shardFor(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(len(p.shards)))
}
