package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"
	"github.com/dgallion1/bookmarkd/internal/format"
	"github.com/dgallion1/bookmarkd/internal/index"
	"github.com/dgallion1/bookmarkd/internal/store"
	"github.com/go-chi/chi/v5"
)

const (
	viewLinks   = bookmarks.KindLink
	viewFolders = bookmarks.KindFolder
	viewItems   = bookmarks.KindAll
)

// itemView is the JSON shape of a single item in flattened listings.
type itemView struct {
	Kind         string            `json:"kind"`
	Title        string            `json:"title"`
	URL          string            `json:"url,omitempty"`
	Path         *string           `json:"path,omitempty"`
	Added        *time.Time        `json:"added,omitempty"`
	LastModified *time.Time        `json:"last_modified,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Children     *int              `json:"children,omitempty"`
	CollectionID string            `json:"collection_id,omitempty"`
}

func toView(it bookmarks.Item) itemView {
	m := it.Info()
	v := itemView{
		Kind:         bookmarks.KindOf(it).String(),
		Title:        m.Title,
		Added:        m.Added,
		LastModified: m.LastModified,
	}
	if p, ok := m.Path(); ok {
		v.Path = &p
	}
	if m.HasAttributes() {
		v.Attributes = maps.Clone(m.Attributes())
	}
	switch x := it.(type) {
	case *bookmarks.Link:
		v.URL = x.URL
	case *bookmarks.Folder:
		n := x.Len()
		v.Children = &n
	}
	return v
}

func entryView(e index.Entry) itemView {
	p := e.Path
	return itemView{
		Kind:         bookmarks.KindLink.String(),
		Title:        e.Title,
		URL:          e.URL,
		Path:         &p,
		Added:        e.Added,
		CollectionID: e.CollectionID,
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !format.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	p, err := format.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	root, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("parse failed", "filename", filename, "error", err)
		jsonError(w, "parse: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if s.cfg.CheckCycles {
		if err := root.CheckAcyclic(); err != nil {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}

	rootPath := s.cfg.DefaultRootPath
	if _, ok := r.MultipartForm.Value["root_path"]; ok {
		rootPath = r.FormValue("root_path")
	}
	name := r.FormValue("name")
	if name == "" {
		name = root.Title
	}

	c, err := s.store.Add(name, filename, rootPath, root)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrFull) {
			status = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), status)
		return
	}
	s.reindex(r.Context(), c)

	snap := c.Snapshot()
	s.log.Info("imported collection", "collection_id", snap.ID, "filename", filename, "links", snap.Links, "folders", snap.Folders)

	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"collections": s.store.List()})
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleView lists the flattened subtree filtered by kind. For links,
// ?under=PATH restricts the result to links at or below that path.
func (s *Server) handleView(mask bookmarks.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}

		if under := r.URL.Query().Get("under"); under != "" && mask == viewLinks {
			entries, err := s.index.ByPath(r.Context(), c.ID, under)
			if err != nil {
				jsonError(w, "index lookup failed: "+err.Error(), http.StatusInternalServerError)
				return
			}
			views := make([]itemView, 0, len(entries))
			for _, e := range entries {
				views = append(views, entryView(e))
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": views})
			return
		}

		views, err := collectViews(c, mask)
		if err != nil {
			jsonError(w, "list failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": views})
	}
}

// collectViews flattens the collection's tree under a read lock.
func collectViews(c *store.Collection, mask bookmarks.Kind) ([]itemView, error) {
	views := []itemView{}
	err := c.View(func(root *bookmarks.Folder) error {
		if root == nil {
			return errors.New("collection has no tree")
		}
		for it := range root.Walk(mask) {
			views = append(views, toView(it))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

type assignPathsRequest struct {
	RootPath string `json:"root_path"`
}

func (s *Server) handleAssignPaths(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}

	var req assignPathsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	c.AssignPaths(req.RootPath)
	s.reindex(r.Context(), c)
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		name = "html"
	}
	wr, err := format.WriterFor(name)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := c.View(func(root *bookmarks.Folder) error { return wr.Write(&buf, root) }); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, format.ErrTooDeep) {
			status = http.StatusUnprocessableEntity
		}
		jsonError(w, "export failed: "+err.Error(), status)
		return
	}

	filename := strings.TrimSuffix(c.Filename, filepath.Ext(c.Filename)) + "." + exportExt(name)
	w.Header().Set("Content-Type", wr.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

func exportExt(name string) string {
	switch strings.ToLower(name) {
	case "netscape", "htm":
		return "html"
	case "markdown":
		return "md"
	case "chromium":
		return "json"
	}
	return strings.ToLower(name)
}

// collection resolves the {id} URL parameter, writing a 404 when missing.
func (s *Server) collection(w http.ResponseWriter, r *http.Request) (*store.Collection, bool) {
	c, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return nil, false
	}
	return c, true
}

// reindex refreshes the link index for c. Index failures are logged, not
// returned: the tree in the store stays authoritative.
func (s *Server) reindex(ctx context.Context, c *store.Collection) {
	err := c.View(func(root *bookmarks.Folder) error {
		return s.index.Replace(ctx, c.ID, root)
	})
	if err != nil {
		s.log.Error("index update failed", "collection_id", c.ID, "error", err)
	}
}

func storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "collection not found", http.StatusNotFound)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
