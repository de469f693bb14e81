package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/fragdeck/internal/htmlout"
	"github.com/dgallion1/fragdeck/internal/render"
	"github.com/dgallion1/fragdeck/internal/source"
	"github.com/dgallion1/fragdeck/internal/viewer"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
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
	parser, err := source.ForFile(filename, source.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
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

	log := s.log.With("filename", filename, "bytes", len(data))
	start := time.Now()

	deck, err := parser.Parse(bytes.NewReader(data), filename)
	if err != nil {
		log.Warn("parse failed", "error", err)
		jsonError(w, "parse failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		deck.Title = title
	}

	pages, err := s.eval.Deck(deck)
	if err != nil {
		if errors.Is(err, render.ErrUnknownKind) {
			log.Error("deck contains unknown node kind", "error", err)
		} else {
			log.Warn("evaluation failed", "error", err)
		}
		jsonError(w, "evaluation failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.stats.Record(strings.ToLower(filepath.Ext(filename)), time.Since(start))

	// Uploading the same file again replaces the existing session wholesale.
	id := viewer.ContentHashHex(append([]byte(filename+"\x00"), data...))[:16]
	sess := viewer.NewSession(id, deck.Title, filename, pages)
	s.store.Put(sess)
	log.Info("deck loaded", "deck_id", id, "pages", len(pages), "duration_ms", time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"deck_id":  id,
		"title":    deck.Title,
		"pages":    len(pages),
		"view_url": fmt.Sprintf("/decks/%s", id),
	})
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	sessions := s.store.List()
	decks := make([]viewer.Snapshot, 0, len(sessions))
	for _, sess := range sessions {
		decks = append(decks, sess.Snapshot())
	}
	writeJSON(w, map[string]any{"decks": decks})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, sess.Snapshot())
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if !s.store.Delete(deckID) {
		jsonError(w, "deck not found", http.StatusNotFound)
		return
	}
	s.log.Info("deck deleted", "deck_id", deckID)
	writeJSON(w, map[string]any{"deleted": deckID})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, sess.Advance())
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, sess.Back())
}

// handleGoto selects a page; n in the URL is 1-based.
func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		jsonError(w, "page must be a number", http.StatusBadRequest)
		return
	}
	snap, err := sess.Goto(n - 1)
	if errors.Is(err, viewer.ErrPageOutOfRange) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

// handleView renders the current page as a standalone HTML document.
// ?reveal=all shows every fragment regardless of the cursor.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var buf bytes.Buffer
	err := sess.WithCurrent(func(p *render.Page) error {
		return htmlout.RenderDocument(&buf, p, htmlout.Options{
			Title:      sess.Title,
			Stylesheet: s.stylesheet,
			RevealAll:  r.URL.Query().Get("reveal") == "all",
		})
	})
	if errors.Is(err, viewer.ErrPageOutOfRange) {
		jsonError(w, "deck has no pages", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("render failed", "deck_id", sess.ID, "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// session looks up the deck named in the URL, writing a 404 if it is missing.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *viewer.Session {
	sess := s.store.Get(chi.URLParam(r, "deckID"))
	if sess == nil {
		jsonError(w, "deck not found", http.StatusNotFound)
	}
	return sess
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
