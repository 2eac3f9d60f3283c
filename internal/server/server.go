// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/julienschmidt/httprouter"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/cache"
)

const (
	DefaultListen     = "127.0.0.1:8787"
	DefaultRetryAfter = 5 * time.Second

	maxPreloadBody = 1 << 20
	maxPreloadKeys = 1000
)

// Options for New.
type Options struct {
	// Contract and ChainID fill in requests that name neither a contract nor
	// a collection.
	Contract string
	ChainID  uint64
	// Registry resolves the collection query parameter.
	Registry   *asset.Registry
	RetryAfter time.Duration
}

// Server exposes one cache over HTTP.
type Server struct {
	cache  *cache.Cache
	opts   Options
	router *httprouter.Router
}

// New wires the routes for c.
func New(c *cache.Cache, opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = asset.NewRegistry()
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = DefaultRetryAfter
	}

	s := &Server{cache: c, opts: opts, router: httprouter.New()}

	s.router.GET("/assets/:variant/:token", s.asset)
	s.router.HEAD("/assets/:variant/:token", s.asset)
	s.router.POST("/cache/preload", s.preload)
	s.router.POST("/cache/clear", s.clear)
	s.router.GET("/cache/stats", s.stats)
	s.router.GET("/healthz", s.healthz)

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		sendError(w, "not found", http.StatusNotFound)
	})
	s.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		sendError(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log.WithField("path", r.URL.Path).Errorf("panic: %v", v)
		sendError(w, "internal server error", http.StatusInternalServerError)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.router.ServeHTTP(rec, r)
	log.WithFields(log.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"status":   rec.status,
		"duration": time.Since(start).Round(time.Microsecond),
	}).Debug("request")
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// grace.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, grace)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, grace time.Duration) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	log.Infof("listening on %s", ln.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) keyFromRequest(r *http.Request, ps httprouter.Params) (asset.Key, error) {
	q := r.URL.Query()

	contract, chainID := s.opts.Contract, s.opts.ChainID
	if id := q.Get("collection"); id != "" {
		col, err := s.opts.Registry.Lookup(id)
		if err != nil {
			return asset.Key{}, errors.Join(asset.ErrInvalidKey, err)
		}
		contract, chainID = col.Contract, col.ChainID
	}
	if v := q.Get("contract"); v != "" {
		contract = v
	}
	if v := q.Get("chainId"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return asset.Key{}, errors.Join(asset.ErrInvalidKey, err)
		}
		chainID = n
	}

	return asset.NewKey(ps.ByName("variant"), ps.ByName("token"), q.Get("wallet"), contract, chainID)
}

// GET /assets/:variant/:token?wallet=&contract=&chainId=&collection=
func (s *Server) asset(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key, err := s.keyFromRequest(r, ps)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.cache.Request(r.Context(), key)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch res.Status {
	case cache.StatusDenied:
		sendError(w, "forbidden", http.StatusForbidden)
		return
	case cache.StatusUnavailable:
		w.Header().Set("Retry-After", strconv.Itoa(int(s.opts.RetryAfter.Seconds())))
		sendError(w, "asset unavailable", http.StatusServiceUnavailable)
		return
	}

	h := res.Handle
	etag := `"` + h.ID() + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=0, must-revalidate")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	rc, err := h.Open()
	if err != nil {
		// Evicted between Request and Open.
		w.Header().Set("Retry-After", "0")
		sendError(w, "asset unavailable", http.StatusServiceUnavailable)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", h.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(h.Size()))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		log.WithError(err).Debug("client went away")
	}
}

// PreloadResult is one entry of the preload response.
type PreloadResult struct {
	Key         asset.Key    `json:"key"`
	Status      cache.Status `json:"status"`
	ID          string       `json:"id,omitempty"`
	Size        int          `json:"size,omitempty"`
	ContentType string       `json:"contentType,omitempty"`
	Error       string       `json:"error,omitempty"`
}

func NewPreloadResult(r cache.Result) PreloadResult {
	out := PreloadResult{Key: r.Key, Status: r.Status}
	if r.Ready() {
		out.ID = r.Handle.ID()
		out.Size = r.Handle.Size()
		out.ContentType = r.Handle.ContentType()
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

// POST /cache/preload with a JSON array of keys.
func (s *Server) preload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var keys []asset.Key
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPreloadBody))
	if err := dec.Decode(&keys); err != nil {
		sendError(w, "invalid preload body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(keys) > maxPreloadKeys {
		sendError(w, "too many keys", http.StatusRequestEntityTooLarge)
		return
	}

	for i := range keys {
		if keys[i].Contract == "" {
			keys[i].Contract = s.opts.Contract
		}
		if keys[i].ChainID == 0 {
			keys[i].ChainID = s.opts.ChainID
		}
	}

	results := s.cache.Preload(r.Context(), keys)
	reply := make([]PreloadResult, 0, len(results))
	for _, res := range results {
		reply = append(reply, NewPreloadResult(res))
	}
	sendReply(w, reply)
}

// POST /cache/clear
func (s *Server) clear(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// GET /cache/stats
func (s *Server) stats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	sendReply(w, s.cache.Stats())
}

// GET /healthz
func (s *Server) healthz(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func sendReply(w http.ResponseWriter, data interface{}) {
	text, err := json.Marshal(data)
	if err != nil {
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(text)
}

type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{Code: code, Error: message})
	if err != nil {
		http.Error(w, `{"code":500,"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(text)
}
