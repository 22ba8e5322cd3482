package tools

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLogCapacity は LogStore が保持する既定の件数。
const DefaultLogCapacity = 64

// Record は 1 回の呼び出しの記録。
type Record struct {
	ID            string      `json:"id"`
	Tool          string      `json:"tool"`
	Command       string      `json:"command,omitempty"`
	Phase         string      `json:"phase"`
	Kind          FailureKind `json:"kind,omitempty"`
	Strategy      string      `json:"strategy,omitempty"`
	Error         string      `json:"error,omitempty"`
	ExitCode      int         `json:"exit_code"`
	StdoutExcerpt string      `json:"stdout_excerpt,omitempty"`
	StderrExcerpt string      `json:"stderr_excerpt,omitempty"`
	StartedAt     time.Time   `json:"started_at"`
	Duration      string      `json:"duration"`
}

// LogStore は直近の呼び出し記録をメモリに保持する（永続化はしない）。
// 容量を超えたら古いものから捨てる。
type LogStore struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	records  map[string]Record
}

// NewLogStore は capacity 件まで保持する LogStore を返す。
func NewLogStore(capacity int) *LogStore {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogStore{capacity: capacity, records: make(map[string]Record)}
}

// Save は記録を保存する。同じ ID は上書き。
func (s *LogStore) Save(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.ID]; !ok {
		s.order = append(s.order, r.ID)
		if len(s.order) > s.capacity {
			delete(s.records, s.order[0])
			s.order = s.order[1:]
		}
	}
	s.records[r.ID] = r
}

// Get は ID で記録を取得する。
func (s *LogStore) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// Recent は新しい順に最大 n 件を返す。n <= 0 なら全件。
func (s *LogStore) Recent(n int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.order) {
		n = len(s.order)
	}
	out := make([]Record, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[s.order[i]])
	}
	return out
}

// Len は保持件数。
func (s *LogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// NewID は呼び出し ID を生成する。
func NewID() string { return uuid.NewString() }
