// Package web serves the interactive graph viewer: a small JSON API over
// the built graphs, an SSE stream for reload notifications, and the
// embedded single-page front end.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/cluster-tools/impactviz/pkg/graph"
	"github.com/cluster-tools/impactviz/pkg/logging"
	"github.com/cluster-tools/impactviz/pkg/model"
	"github.com/cluster-tools/impactviz/pkg/pubsub"
	"github.com/cluster-tools/impactviz/pkg/render"
	"github.com/cluster-tools/impactviz/pkg/report"
)

//go:embed static/*
var staticFiles embed.FS

// MergedID is the pseudo unit id selecting the merged graph.
const MergedID = "all"

// GraphNode is one node of the render-ready graph payload. Positions come
// from the server-side deterministic layout; the front end only draws.
type GraphNode struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Criticality string  `json:"criticality"`
	Member      bool    `json:"member"`
	OwningUnit  string  `json:"owning_unit,omitempty"`
	Color       string  `json:"color"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// GraphEdge is a directed edge of the graph payload.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphPayload is the response of the graph endpoints.
type GraphPayload struct {
	Unit  string      `json:"unit"`
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Server serves the viewer. The record set is an immutable snapshot
// swapped wholesale on reload; graphs are rebuilt per request.
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher
	palette   render.Palette
	seed      uint64

	mu      sync.RWMutex
	records model.RecordSet
}

// NewServer creates a web server rendering with the given palette and
// layout seed.
func NewServer(palette render.Palette, seed uint64) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		publisher: pubsub.NewSSEPublisher(),
		palette:   palette,
		seed:      seed,
	}
	s.setupRoutes()
	return s
}

// SetRecords swaps in a freshly loaded record set and notifies connected
// viewers.
func (s *Server) SetRecords(rs model.RecordSet, path string) {
	s.mu.Lock()
	s.records = rs
	s.mu.Unlock()

	if err := s.publisher.Publish("records", "reloaded", pubsub.RecordsStatus{
		Path:  path,
		Units: len(rs),
	}); err != nil {
		logging.Warn("failed to publish records status", "error", err)
	}
}

func (s *Server) snapshot() model.RecordSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/units", s.handleUnits).Methods("GET")
	api.HandleFunc("/graph/{unit}", s.handleGraph).Methods("GET")
	api.HandleFunc("/details/{unit}", s.handleDetails).Methods("GET")
	api.HandleFunc("/events/{topic}", s.handleSubscribe).Methods("GET")

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("embedded static files missing", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot().UnitIDs())
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	unitID := mux.Vars(r)["unit"]
	rs := s.snapshot()

	var (
		g   *model.Graph
		err error
	)
	if strings.EqualFold(strings.TrimSpace(unitID), MergedID) {
		unitID = MergedID
		g = graph.BuildMergedGraph(rs)
	} else {
		g, err = graph.BuildUnitGraph(unitID, rs)
		if err != nil {
			if model.IsNotFound(err) {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, s.payload(unitID, g))
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	unitID := mux.Vars(r)["unit"]

	blocks, err := report.Details(unitID, s.snapshot())
	if err != nil {
		if model.IsNotFound(err) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.Debug("SSE write failed, client gone", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// payload converts a built graph into the render-ready response, running
// the layout and color policy server-side so both backends share them.
func (s *Server) payload(unitID string, g *model.Graph) GraphPayload {
	positions := render.Layout(g, s.seed)

	p := GraphPayload{
		Unit:  unitID,
		Nodes: make([]GraphNode, 0, g.NodeCount()),
		Edges: make([]GraphEdge, 0, g.EdgeCount()),
	}
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		pos := positions[id]
		p.Nodes = append(p.Nodes, GraphNode{
			ID:          id,
			Label:       attrs.Label,
			Criticality: string(attrs.Criticality),
			Member:      attrs.Member,
			OwningUnit:  attrs.OwningUnit,
			Color:       s.palette.HexFor(attrs),
			X:           pos.X,
			Y:           pos.Y,
		})
	}
	for _, e := range g.Edges() {
		p.Edges = append(p.Edges, GraphEdge{Source: e[0], Target: e[1]})
	}
	return p
}

// Handler exposes the full route tree, wrapped in the request-ID logging
// middleware.
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// Start runs the web server on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("web server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
