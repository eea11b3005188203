// Package memory is an in-process record store with the same contract as the
// Postgres repositories. Tests and local tooling use it in place of a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"assetvault/internal/domain/repositories"

	"github.com/google/uuid"
)

// Operation names accepted by FailOn
const (
	OpRepositoryCreate = "repository.create"
	OpRepositoryDelete = "repository.delete"
	OpFolderCreate     = "folder.create"
	OpFolderUpdate     = "folder.update"
	OpFolderDelete     = "folder.delete"
	OpFolderReassign   = "folder.reassign"
	OpFolderSetParent  = "folder.set_parent"
	OpFolderList       = "folder.list"
	OpAssetCreate      = "asset.create"
	OpAssetUpdate      = "asset.update"
	OpAssetDelete      = "asset.delete"
	OpAssetReassign    = "asset.reassign"
	OpAssetSetFolder   = "asset.set_folder"
	OpAssetList        = "asset.list"
)

// Store holds every table behind one lock
type Store struct {
	mu      sync.Mutex
	seq     int64
	repos   map[string]*row[repoRecord]
	folders map[string]*row[folderRecord]
	assets  map[string]*row[assetRecord]
	fail    map[string]error
	calls   map[string]int
	now     func() time.Time
}

type row[T any] struct {
	seq  int64
	data T
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		repos:   make(map[string]*row[repoRecord]),
		folders: make(map[string]*row[folderRecord]),
		assets:  make(map[string]*row[assetRecord]),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
		now:     time.Now,
	}
}

// FailOn makes every later call of op return err (nil clears it)
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

// Calls returns how many times op was invoked
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records the call and returns the injected failure, if any.
// Caller must hold s.mu.
func (s *Store) enter(op string) error {
	s.calls[op]++
	if err, ok := s.fail[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func newID() string {
	return uuid.NewString()
}

// ExecTx runs fn directly; the store applies each call atomically
func (s *Store) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// sortedRows returns map values ordered by insertion
func sortedRows[T any](m map[string]*row[T], keep func(T) bool) []T {
	rows := make([]*row[T], 0, len(m))
	for _, r := range m {
		if keep(r.data) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.data)
	}
	return out
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
