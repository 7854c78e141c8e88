package bookmarks

import "iter"

// Walk yields every item below f whose kind is in mask, depth-first and
// pre-order: an item comes before its descendants and siblings keep their
// order. f itself is not yielded. The sequence is re-evaluated on every
// range; the tree must not be mutated while ranging.
func (f *Folder) Walk(mask Kind) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		walk(f, mask, yield)
	}
}

func walk(f *Folder, mask Kind, yield func(Item) bool) bool {
	for _, it := range f.children {
		switch v := it.(type) {
		case *Folder:
			if mask&KindFolder != 0 && !yield(v) {
				return false
			}
			if !walk(v, mask, yield) {
				return false
			}
		case *Link:
			if mask&KindLink != 0 && !yield(v) {
				return false
			}
		default:
			if mask&KindOther != 0 && !yield(v) {
				return false
			}
		}
	}
	return true
}

// AllItems yields every item in the subtree.
func (f *Folder) AllItems() iter.Seq[Item] {
	return f.Walk(KindAll)
}

// AllLinks yields every link in the subtree.
func (f *Folder) AllLinks() iter.Seq[*Link] {
	return func(yield func(*Link) bool) {
		for it := range f.Walk(KindLink) {
			if !yield(it.(*Link)) {
				return
			}
		}
	}
}

// AllFolders yields every folder in the subtree, excluding f.
func (f *Folder) AllFolders() iter.Seq[*Folder] {
	return func(yield func(*Folder) bool) {
		for it := range f.Walk(KindFolder) {
			if !yield(it.(*Folder)) {
				return
			}
		}
	}
}

// ItemsOf yields every item in the subtree of concrete type T, typically a
// custom variant.
func ItemsOf[T Item](f *Folder) iter.Seq[T] {
	return func(yield func(T) bool) {
		for it := range f.Walk(KindAll) {
			if v, ok := it.(T); ok && !yield(v) {
				return
			}
		}
	}
}

// Count returns the number of items below f matching mask.
func (f *Folder) Count(mask Kind) int {
	n := 0
	for range f.Walk(mask) {
		n++
	}
	return n
}
