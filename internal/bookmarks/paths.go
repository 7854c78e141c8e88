package bookmarks

// AssignPaths sets the path of f and every folder and link below it.
// A folder's path is its title joined to its parent's path with
// PathSeparator; rootPath acts as the parent of f and is skipped when empty.
// A link takes the path of the folder that contains it. Custom items are
// left untouched. Paths go stale when titles or structure change; run
// AssignPaths again after editing.
func (f *Folder) AssignPaths(rootPath string) {
	assignPaths(f, rootPath)
}

func assignPaths(f *Folder, parentPath string) {
	p := f.Title
	if parentPath != "" {
		p = parentPath + PathSeparator + f.Title
	}
	f.SetPath(p)

	for _, it := range f.children {
		switch v := it.(type) {
		case *Folder:
			assignPaths(v, p)
		case *Link:
			v.SetPath(p)
		}
	}
}
