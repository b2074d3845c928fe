package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kata-shadcn/kata-registry/internal/contenthash"
)

var validFile = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\.json$`)

type errorResponse struct {
	Error string `json:"error"`
	Name  string `json:"name,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if !validFile.MatchString(file) || strings.Contains(file, "..") {
		writeError(w, http.StatusBadRequest, "invalid registry file name")
		return
	}

	data, err := os.ReadFile(filepath.Join(s.opts.Dir, file))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error: "component not found",
				Name:  strings.TrimSuffix(file, ".json"),
			})
			return
		}
		s.logger.Error("read registry file", zap.String("file", file), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	etag := `"` + contenthash.Bytes(data) + `"`
	h := w.Header()
	h.Set("ETag", etag)
	h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", s.opts.CacheMaxAge))
	h.Set("Content-Type", "application/json; charset=utf-8")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Write(data)
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Expose-Headers", "ETag")
		next.ServeHTTP(w, r)
	})
}

func handlePreflight(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Accept, Content-Type, If-None-Match")
	h.Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
