package repository

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/delega/pkg/metrics"
)

// Treap-backed, in-memory performance ranking.
//
// Ordering: overall score DESC, then worker ID ASC, so an in-order walk
// yields the ranking from best to worst. Workers sharing a score share a
// rank.

// Entry is one ranking row.
type Entry struct {
	Rank           int    `json:"rank"`
	WorkerID       string `json:"workerId"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	TasksCompleted int    `json:"tasksCompleted"`
}

// Ranking provides read/write access to the performance ranking.
type Ranking interface {
	// Update replaces a worker's ranking entry.
	Update(ctx context.Context, workerID, name string, score, tasksCompleted int) error
	// Remove drops a worker from the ranking. Unknown IDs are a no-op.
	Remove(ctx context.Context, workerID string) error
	// Rank returns the row for one worker, ErrNotFound when untracked.
	Rank(ctx context.Context, workerID string) (Entry, error)
	// TopN returns the best n rows in rank order.
	TopN(ctx context.Context, n int) ([]Entry, error)
	// Count returns the number of workers tracked.
	Count(ctx context.Context) int
}

type rankRecord struct {
	score          int
	name           string
	tasksCompleted int
}

type rankNode struct {
	id    string
	score int
	prio  uint64
	left  *rankNode
	right *rankNode
	size  int
}

func rsize(n *rankNode) int {
	if n == nil {
		return 0
	}
	return n.size
}

func rfix(n *rankNode) {
	if n != nil {
		n.size = 1 + rsize(n.left) + rsize(n.right)
	}
}

// rankBefore reports whether (aScore, aID) ranks earlier than (bScore, bID).
func rankBefore(aScore int, aID string, bScore int, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotRight(y *rankNode) *rankNode {
	x := y.left
	y.left = x.right
	x.right = y
	rfix(y)
	rfix(x)
	return x
}

func rotLeft(x *rankNode) *rankNode {
	y := x.right
	x.right = y.left
	y.left = x
	rfix(x)
	rfix(y)
	return y
}

func rankInsert(n *rankNode, id string, score int, prio uint64) *rankNode {
	if n == nil {
		return &rankNode{id: id, score: score, prio: prio, size: 1}
	}
	if rankBefore(score, id, n.score, n.id) {
		n.left = rankInsert(n.left, id, score, prio)
		if n.left.prio > n.prio {
			n = rotRight(n)
		}
	} else {
		n.right = rankInsert(n.right, id, score, prio)
		if n.right.prio > n.prio {
			n = rotLeft(n)
		}
	}
	rfix(n)
	return n
}

func rankDelete(n *rankNode, id string, score int) *rankNode {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotRight(n)
			n.right = rankDelete(n.right, id, score)
		} else {
			n = rotLeft(n)
			n.left = rankDelete(n.left, id, score)
		}
	case rankBefore(score, id, n.score, n.id):
		n.left = rankDelete(n.left, id, score)
	default:
		n.right = rankDelete(n.right, id, score)
	}
	rfix(n)
	return n
}

// countGreater returns how many tracked workers have a strictly higher
// score. Everything in a node's left subtree ranks earlier, so its scores
// are at least the node's own.
func countGreater(n *rankNode, score int) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += rsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

func collectTop(n *rankNode, limit int, records map[string]rankRecord, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTop(n.left, limit, records, out)
	if len(*out) < limit {
		rec := records[n.id]
		*out = append(*out, Entry{
			WorkerID:       n.id,
			Name:           rec.name,
			Score:          rec.score,
			TasksCompleted: rec.tasksCompleted,
		})
	}
	if len(*out) < limit {
		collectTop(n.right, limit, records, out)
	}
}

// RankStore is the treap-backed Ranking implementation.
type RankStore struct {
	mu   sync.RWMutex
	root *rankNode
	byID map[string]rankRecord
	rng  *rand.Rand
}

// NewRankStore constructs an empty ranking.
func NewRankStore() *RankStore {
	return &RankStore{
		byID: make(map[string]rankRecord),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *RankStore) Update(ctx context.Context, workerID, name string, score, tasksCompleted int) error {
	start := time.Now()
	defer func() {
		metrics.RecordRankingUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byID[workerID]; ok {
		s.root = rankDelete(s.root, workerID, old.score)
	}
	s.byID[workerID] = rankRecord{score: score, name: name, tasksCompleted: tasksCompleted}
	s.root = rankInsert(s.root, workerID, score, s.rng.Uint64())
	return nil
}

func (s *RankStore) Remove(ctx context.Context, workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[workerID]
	if !ok {
		return nil
	}
	s.root = rankDelete(s.root, workerID, old.score)
	delete(s.byID, workerID)
	return nil
}

func (s *RankStore) Rank(ctx context.Context, workerID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[workerID]
	if !ok {
		metrics.RecordStoreError("rankstore", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{
		Rank:           countGreater(s.root, rec.score) + 1,
		WorkerID:       workerID,
		Name:           rec.name,
		Score:          rec.score,
		TasksCompleted: rec.tasksCompleted,
	}, nil
}

func (s *RankStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordStoreError("rankstore", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTop(s.root, n, s.byID, &out)
	assignRanks(out)
	return out, nil
}

func (s *RankStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// assignRanks fills Rank on a slice already in rank order, giving equal
// scores the same rank and skipping positions after a tie.
func assignRanks(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}
