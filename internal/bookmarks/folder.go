package bookmarks

import (
	"fmt"
	"iter"
	"slices"
)

// Folder is an item holding an ordered list of child items. A folder owns
// its children: an item belongs to at most one folder and a folder must
// never contain itself, directly or through descendants.
type Folder struct {
	Meta
	children []Item
}

func NewFolder(title string, children ...Item) *Folder {
	f := &Folder{Meta: Meta{Title: title}}
	f.Add(children...)
	return f
}

// Add appends items in order.
func (f *Folder) Add(items ...Item) {
	f.children = append(f.children, items...)
}

// Insert places item at index i, shifting later children right.
// i == Len() appends.
func (f *Folder) Insert(i int, item Item) error {
	if i < 0 || i > len(f.children) {
		return fmt.Errorf("insert at %d of %d: %w", i, len(f.children), ErrIndexOutOfRange)
	}
	f.children = slices.Insert(f.children, i, item)
	return nil
}

// Remove deletes the first occurrence of item and reports whether it was found.
func (f *Folder) Remove(item Item) bool {
	i := f.IndexOf(item)
	if i < 0 {
		return false
	}
	f.children = slices.Delete(f.children, i, i+1)
	return true
}

func (f *Folder) RemoveAt(i int) (Item, error) {
	if i < 0 || i >= len(f.children) {
		return nil, fmt.Errorf("remove at %d of %d: %w", i, len(f.children), ErrIndexOutOfRange)
	}
	it := f.children[i]
	f.children = slices.Delete(f.children, i, i+1)
	return it, nil
}

// IndexOf returns the position of item among the direct children, or -1.
func (f *Folder) IndexOf(item Item) int {
	for i, c := range f.children {
		if c == item {
			return i
		}
	}
	return -1
}

func (f *Folder) Len() int { return len(f.children) }

// At returns the direct child at index i. It panics if i is out of range.
func (f *Folder) At(i int) Item { return f.children[i] }

// Children iterates the direct children in order.
func (f *Folder) Children() iter.Seq2[int, Item] {
	return slices.All(f.children)
}

func (f *Folder) Clear() {
	clear(f.children)
	f.children = f.children[:0]
}

func (f *Folder) String() string {
	return ">>> " + f.Title + " <<<"
}

// CheckAcyclic reports ErrCycle if f contains itself anywhere in its subtree.
// Walk and AssignPaths do not check; producers that build trees from
// untrusted input call this first.
func (f *Folder) CheckAcyclic() error {
	onStack := make(map[*Folder]bool)
	done := make(map[*Folder]bool)

	var visit func(*Folder) error
	visit = func(cur *Folder) error {
		if onStack[cur] {
			return fmt.Errorf("%q: %w", cur.Title, ErrCycle)
		}
		if done[cur] {
			return nil
		}
		onStack[cur] = true
		for _, c := range cur.children {
			if sub, ok := c.(*Folder); ok {
				if err := visit(sub); err != nil {
					return err
				}
			}
		}
		onStack[cur] = false
		done[cur] = true
		return nil
	}
	return visit(f)
}
