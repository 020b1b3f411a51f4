package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// StaticHandler serves the browser client from a directory. Unknown paths
// fall back to index.html so that client-side routes resolve.
type StaticHandler struct {
	root string
}

// NewStaticHandler creates a StaticHandler rooted at dir.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{root: dir}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteJSON(w, http.StatusNotFound, MessageResponse{Message: "Not found"})

		return
	}

	name := r.URL.Path
	if strings.HasSuffix(name, "/") {
		name += "index.html"
	}

	if slices.Contains(strings.Split(name, "/"), "..") {
		http.Error(w, "Forbidden", http.StatusForbidden)

		return
	}

	if h.serveFile(w, r, path.Clean("/"+name)) {
		return
	}

	if h.serveFile(w, r, "/index.html") {
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not found"))
}

func (h *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	file, err := os.Open(filepath.Join(h.root, filepath.FromSlash(name)))
	if err != nil {
		return false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), file)

	return true
}
