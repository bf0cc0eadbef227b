// Package server is the HTTP backend for a browser color picker. It serves
// memoized plane and strip rasters and converts colors and pointer positions.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/jsvensson/oklchstudio/internal/raster"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("oklch.server")

// Config holds request defaults and limits.
type Config struct {
	// Width and Height are used when a request omits them.
	Width  int
	Height int
	// MaxSize bounds either dimension of a requested raster.
	MaxSize      int
	CacheControl string
}

// Server routes picker requests to a raster memo.
type Server struct {
	memo   *raster.Memo
	cfg    Config
	router *mux.Router
}

// New creates a server backed by memo. Zero config fields take defaults.
func New(memo *raster.Memo, cfg Config) *Server {
	if cfg.Width <= 0 {
		cfg.Width = 256
	}
	if cfg.Height <= 0 {
		cfg.Height = 256
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 2048
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "public, max-age=86400"
	}

	s := &Server{memo: memo, cfg: cfg, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(logRequests, withCORS)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/plane/{hue:[-+0-9.]+}.png", s.handlePlane).Methods(http.MethodGet)
	s.router.HandleFunc("/strip.png", s.handleStrip).Methods(http.MethodGet)
	s.router.HandleFunc("/convert", s.handleConvert).Methods(http.MethodGet)
	s.router.HandleFunc("/pick", s.handlePick).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the handler in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 5 * time.Second}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePlane(w http.ResponseWriter, r *http.Request) {
	hue, err := parseHue(mux.Vars(r)["hue"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	width, height, err := s.size(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.servePNG(w, r, raster.PlaneKey(hue, width, height))
}

func (s *Server) handleStrip(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.stripSize(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.servePNG(w, r, raster.StripKey(width, height))
}

func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, key raster.Key) {
	data, err := s.memo.PNG(r.Context(), key)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, raster.ErrInvalidSize) {
			status = http.StatusBadRequest
		}
		log.Errorf("render %s: %s", key, err)
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", s.cfg.CacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("color")
	if input == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing color parameter"))
		return
	}
	c, err := color.Parse(input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, Describe(c))
}

// PickResult is the color under the pointer on a plane.
type PickResult struct {
	X     int       `json:"x"`
	Y     int       `json:"y"`
	Color ColorInfo `json:"color"`
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.Atoi(q.Get("x"))
	y, errY := strconv.Atoi(q.Get("y"))
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, errors.New("x and y must be integers"))
		return
	}
	hue, err := parseHue(q.Get("hue"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	width, height, err := s.size(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	l, c, err := raster.PlanePoint(x, y, width, height)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, PickResult{
		X:     x,
		Y:     y,
		Color: Describe(color.OKLCH{L: l, C: c, H: raster.PlaneKey(hue, width, height).Hue}),
	})
}

// size reads width and height, falling back to the configured defaults.
func (s *Server) size(r *http.Request) (int, int, error) {
	width, err := s.intParam(r, "width", s.cfg.Width)
	if err != nil {
		return 0, 0, err
	}
	height, err := s.intParam(r, "height", s.cfg.Height)
	if err != nil {
		return 0, 0, err
	}
	return width, height, s.checkLimit(width, height)
}

// stripSize reads width and height for a hue strip, one pixel per degree by default.
func (s *Server) stripSize(r *http.Request) (int, int, error) {
	width, err := s.intParam(r, "width", 360)
	if err != nil {
		return 0, 0, err
	}
	height, err := s.intParam(r, "height", 24)
	if err != nil {
		return 0, 0, err
	}
	return width, height, s.checkLimit(width, height)
}

// parseHue reads a finite hue in degrees.
func parseHue(v string) (float64, error) {
	hue, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(hue) || math.IsInf(hue, 0) {
		return 0, fmt.Errorf("invalid hue %q", v)
	}
	return hue, nil
}

func (s *Server) intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

func (s *Server) checkLimit(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", raster.ErrInvalidSize, width, height)
	}
	if width > s.cfg.MaxSize || height > s.cfg.MaxSize {
		return fmt.Errorf("%w: %dx%d exceeds %d", raster.ErrInvalidSize, width, height, s.cfg.MaxSize)
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warningf("encode response: %s", err)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debugf("%s %s (%s)", r.Method, r.URL.RequestURI(), time.Since(start))
	})
}
