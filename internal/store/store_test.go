package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
)

func sampleTree() *bookmarks.Folder {
	return bookmarks.NewFolder("Bookmarks",
		bookmarks.NewFolder("Work", bookmarks.NewLink("Mail", "https://mail.example")),
		bookmarks.NewLink("Home", "https://home.example"),
	)
}

func TestStore_AddGet(t *testing.T) {
	s := New(time.Hour, 10, nil)
	c, err := s.Add("mine", "bookmarks.html", "", sampleTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.Get(c.ID)
	if err != nil {
		t.Fatalf("expected to get collection back: %v", err)
	}
	if got != c {
		t.Error("expected same collection pointer")
	}
}

func TestStore_AddAssignsPaths(t *testing.T) {
	s := New(time.Hour, 10, nil)
	c, err := s.Add("mine", "bookmarks.html", "Imported", sampleTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = c.View(func(root *bookmarks.Folder) error {
		for l := range root.AllLinks() {
			p, ok := l.Path()
			if !ok {
				t.Errorf("link %q has no path", l.Title)
			}
			if l.Title == "Mail" && p != "Imported/Bookmarks/Work" {
				t.Errorf("expected %q, got %q", "Imported/Bookmarks/Work", p)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	c.AssignPaths("")
	snap := c.Snapshot()
	if snap.RootPath != "" {
		t.Errorf("expected root path reset, got %q", snap.RootPath)
	}
	_ = c.View(func(root *bookmarks.Folder) error {
		if p, _ := root.Path(); p != "Bookmarks" {
			t.Errorf("expected root path %q, got %q", "Bookmarks", p)
		}
		return nil
	})
}

func TestStore_GetMissing(t *testing.T) {
	s := New(time.Hour, 10, nil)
	if _, err := s.Get("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Full(t *testing.T) {
	s := New(time.Hour, 1, nil)
	if _, err := s.Add("a", "a.html", "", sampleTree()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Add("b", "b.html", "", sampleTree()); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
}

func TestStore_SnapshotCounts(t *testing.T) {
	s := New(time.Hour, 10, nil)
	c, _ := s.Add("mine", "bookmarks.html", "", sampleTree())

	snap := c.Snapshot()
	if snap.Folders != 1 || snap.Links != 2 || snap.Items != 3 {
		t.Errorf("unexpected counts: %+v", snap)
	}
}

func TestStore_ListOrdered(t *testing.T) {
	s := New(time.Hour, 10, nil)
	first, _ := s.Add("first", "a.html", "", sampleTree())
	time.Sleep(time.Millisecond)
	second, _ := s.Add("second", "b.html", "", sampleTree())

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("expected creation order, got %s, %s", list[0].Name, list[1].Name)
	}
}

func TestStore_DeleteCallsHook(t *testing.T) {
	s := New(time.Hour, 10, nil)
	var evicted []string
	s.OnEvict(func(id string) { evicted = append(evicted, id) })

	c, _ := s.Add("mine", "bookmarks.html", "", sampleTree())
	if err := s.Delete(c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if len(evicted) != 1 || evicted[0] != c.ID {
		t.Errorf("expected hook called once with %s, got %v", c.ID, evicted)
	}
}

func TestStore_TTLCleanup(t *testing.T) {
	s := New(50*time.Millisecond, 10, nil)

	old, _ := s.Add("old", "old.html", "", sampleTree())

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh, _ := s.Add("new", "new.html", "", sampleTree())

	removed := s.Cleanup()

	if len(removed) != 1 || removed[0] != old.ID {
		t.Errorf("expected only %s removed, got %v", old.ID, removed)
	}
	if _, err := s.Get(old.ID); err == nil {
		t.Error("expected expired collection to be cleaned up")
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Error("expected fresh collection to survive cleanup")
	}
}

func TestStore_CleanupEmpty(t *testing.T) {
	s := New(time.Hour, 10, nil)
	// Should not panic on empty store.
	if removed := s.Cleanup(); len(removed) != 0 {
		t.Errorf("expected nothing removed, got %v", removed)
	}
}

func TestStore_StartStop(t *testing.T) {
	s := New(10*time.Millisecond, 10, nil)
	var mu sync.Mutex
	evicted := 0
	s.OnEvict(func(string) {
		mu.Lock()
		evicted++
		mu.Unlock()
	})
	s.Add("old", "old.html", "", sampleTree())

	s.Start(context.Background(), 5*time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for s.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if s.Len() != 0 {
		t.Error("expected janitor to evict the expired collection")
	}
	mu.Lock()
	defer mu.Unlock()
	if evicted != 1 {
		t.Errorf("expected 1 eviction, got %d", evicted)
	}
}

func TestCollection_UpdateError(t *testing.T) {
	s := New(time.Hour, 10, nil)
	c, _ := s.Add("mine", "bookmarks.html", "", sampleTree())
	before := c.Snapshot().UpdatedAt

	boom := errors.New("boom")
	if err := c.Update(func(*bookmarks.Folder) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected error passthrough, got %v", err)
	}
	if !c.Snapshot().UpdatedAt.Equal(before) {
		t.Error("failed update must not touch UpdatedAt")
	}
}
