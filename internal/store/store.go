// Package store keeps imported bookmark trees in memory.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("collection not found")
	ErrFull     = errors.New("collection store is full")
)

// Collection is one imported tree. The tree is guarded by the collection's
// lock; reach it through View and Update only.
type Collection struct {
	mu sync.RWMutex

	ID       string
	Name     string
	Filename string
	RootPath string

	CreatedAt time.Time
	UpdatedAt time.Time

	root *bookmarks.Folder
}

// Summary is a read-only, JSON-safe copy of collection state.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Filename  string    `json:"filename"`
	RootPath  string    `json:"root_path"`
	Folders   int       `json:"folders"`
	Links     int       `json:"links"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View runs fn with shared access to the tree. fn must not mutate it.
func (c *Collection) View(fn func(root *bookmarks.Folder) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(c.root)
}

// Update runs fn with exclusive access to the tree.
func (c *Collection) Update(fn func(root *bookmarks.Folder) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(c.root); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	return nil
}

// AssignPaths re-runs path propagation with a new root path.
func (c *Collection) AssignPaths(rootPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root.AssignPaths(rootPath)
	c.RootPath = rootPath
	c.UpdatedAt = time.Now()
}

// Snapshot returns a JSON-safe copy of the collection state.
func (c *Collection) Snapshot() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Summary{
		ID:        c.ID,
		Name:      c.Name,
		Filename:  c.Filename,
		RootPath:  c.RootPath,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for it := range c.root.AllItems() {
		s.Items++
		switch bookmarks.KindOf(it) {
		case bookmarks.KindFolder:
			s.Folders++
		case bookmarks.KindLink:
			s.Links++
		}
	}
	return s
}

// Store is a thread-safe in-memory collection registry with TTL eviction.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
	ttl         time.Duration
	max         int
	onEvict     func(id string)
	log         *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(ttl time.Duration, limit int, log *slog.Logger) *Store {
	return &Store{
		collections: make(map[string]*Collection),
		ttl:         ttl,
		max:         limit,
		log:         log,
	}
}

// OnEvict registers a hook called with the ID of every collection removed
// by Delete or Cleanup.
func (s *Store) OnEvict(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

// Add registers a tree under a fresh ID. Paths are assigned with rootPath
// before the collection becomes visible.
func (s *Store) Add(name, filename, rootPath string, root *bookmarks.Folder) (*Collection, error) {
	root.AssignPaths(rootPath)

	now := time.Now()
	c := &Collection{
		ID:        uuid.NewString(),
		Name:      name,
		Filename:  filename,
		RootPath:  rootPath,
		CreatedAt: now,
		UpdatedAt: now,
		root:      root,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.collections) >= s.max {
		return nil, fmt.Errorf("%w (%d)", ErrFull, s.max)
	}
	s.collections[c.ID] = c
	return c, nil
}

func (s *Store) Get(id string) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return c, nil
}

// List returns summaries ordered by creation time, oldest first.
func (s *Store) List() []Summary {
	s.mu.Lock()
	cs := make([]*Collection, 0, len(s.collections))
	for _, c := range s.collections {
		cs = append(cs, c)
	}
	s.mu.Unlock()

	out := make([]Summary, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Snapshot())
	}
	slices.SortFunc(out, func(a, b Summary) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.collections[id]
	delete(s.collections, id)
	hook := s.onEvict
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if hook != nil {
		hook(id)
	}
	return nil
}

// Cleanup removes collections not updated within the TTL and returns their IDs.
func (s *Store) Cleanup() []string {
	s.mu.Lock()
	now := time.Now()
	var removed []string
	for id, c := range s.collections {
		c.mu.RLock()
		expired := now.Sub(c.UpdatedAt) > s.ttl
		c.mu.RUnlock()
		if expired {
			delete(s.collections, id)
			removed = append(removed, id)
		}
	}
	hook := s.onEvict
	s.mu.Unlock()

	if hook != nil {
		for _, id := range removed {
			hook(id)
		}
	}
	if len(removed) > 0 && s.log != nil {
		s.log.Info("evicted collections", "count", len(removed))
	}
	return removed
}

// Len returns the number of stored collections.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections)
}

// Start launches the eviction loop.
func (s *Store) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Stop halts the eviction loop and waits for it to exit.
func (s *Store) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
