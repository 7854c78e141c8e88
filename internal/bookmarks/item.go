// Package bookmarks models a bookmark hierarchy: folders holding an ordered
// list of links, nested folders and custom items.
package bookmarks

import (
	"errors"
	"time"
)

// PathSeparator joins folder titles in assigned paths.
const PathSeparator = "/"

var (
	ErrIndexOutOfRange = errors.New("bookmarks: index out of range")
	ErrCycle           = errors.New("bookmarks: folder contains itself")
)

// Item is any node of the hierarchy. Folder and Link are the built-in
// variants; custom variants embed Meta to satisfy it.
type Item interface {
	Info() *Meta
}

// Meta holds the attributes shared by every item.
type Meta struct {
	Title        string
	LastModified *time.Time
	Added        *time.Time

	attrs   map[string]string
	path    string
	hasPath bool
}

// Info returns the item's shared attributes.
func (m *Meta) Info() *Meta { return m }

// Attributes returns the attribute map, allocating it on first use.
func (m *Meta) Attributes() map[string]string {
	if m.attrs == nil {
		m.attrs = make(map[string]string)
	}
	return m.attrs
}

// SetAttributes replaces the attribute map. A nil map resets it to the
// unallocated state.
func (m *Meta) SetAttributes(attrs map[string]string) {
	m.attrs = attrs
}

// SetAttribute stores a single attribute.
func (m *Meta) SetAttribute(key, value string) {
	m.Attributes()[key] = value
}

// Attribute looks up a single attribute without allocating the map.
func (m *Meta) Attribute(key string) (string, bool) {
	v, ok := m.attrs[key]
	return v, ok
}

// HasAttributes reports whether the map has been allocated.
func (m *Meta) HasAttributes() bool {
	return m.attrs != nil
}

// Path returns the hierarchical path and whether it has been set.
func (m *Meta) Path() (string, bool) {
	return m.path, m.hasPath
}

func (m *Meta) SetPath(p string) {
	m.path = p
	m.hasPath = true
}

func (m *Meta) ClearPath() {
	m.path = ""
	m.hasPath = false
}

// Link is a leaf item pointing at a single target.
type Link struct {
	Meta
	URL string
}

func NewLink(title, url string) *Link {
	return &Link{Meta: Meta{Title: title}, URL: url}
}

func (l *Link) String() string {
	return l.Title + " <" + l.URL + ">"
}

// Kind tags the item variants. Values combine into masks for Walk.
type Kind uint8

const (
	KindFolder Kind = 1 << iota
	KindLink
	KindOther

	KindAll = KindFolder | KindLink | KindOther
)

// KindOf returns the variant tag of an item.
func KindOf(it Item) Kind {
	switch it.(type) {
	case *Folder:
		return KindFolder
	case *Link:
		return KindLink
	default:
		return KindOther
	}
}

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindLink:
		return "link"
	case KindOther:
		return "other"
	case KindAll:
		return "all"
	}
	return "mixed"
}
