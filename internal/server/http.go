package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/0x6d61/futu-mcp/internal/tools"
)

// maxRequestBody は REST 呼び出しの引数 JSON の上限。
const maxRequestBody = 1 << 20

// Config は HTTP サーバーの設定。
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig は HTTP サーバーの既定値を返す。
// 外部プロセスの実行時間があるので WriteTimeout は設けない。
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8080",
		ReadTimeout:     15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// NewRouter は MCP（/mcp）と REST（/v1/*）のルートを持つ chi ルーターを返す。
func NewRouter(d *tools.Dispatcher, mcpServer *mcp.Server, log *zap.Logger) *chi.Mux {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{d: d, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "tools": d.Registry().Len()})
	})

	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpServer }, nil)
	r.Handle("/mcp", streamable)
	r.Handle("/mcp/*", streamable)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tools", h.listTools)
		r.Post("/tools/{name}/invoke", h.invokeTool)
		r.Get("/invocations", h.listInvocations)
		r.Get("/invocations/{id}", h.getInvocation)
	})
	return r
}

type handlers struct {
	d   *tools.Dispatcher
	log *zap.Logger
}

type toolView struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func (h *handlers) listTools(w http.ResponseWriter, r *http.Request) {
	specs := h.d.Registry().List()
	out := make([]toolView, 0, len(specs))
	for _, s := range specs {
		out = append(out, toolView{Name: s.Name, Description: s.Description, InputSchema: s.InputSchema()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (h *handlers) invokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxRequestBody {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	env, err := h.d.InvokeJSON(r.Context(), name, body)
	if errors.Is(err, tools.ErrUnknownTool) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *handlers) listInvocations(w http.ResponseWriter, r *http.Request) {
	store := h.d.LogStore()
	if store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"invocations": []tools.Record{}})
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"invocations": store.Recent(limit)})
}

func (h *handlers) getInvocation(w http.ResponseWriter, r *http.Request) {
	store := h.d.LogStore()
	id := chi.URLParam(r, "id")
	if store == nil {
		writeError(w, http.StatusNotFound, "invocation log disabled")
		return
	}
	rec, ok := store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "invocation not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger は chi の middleware.Logger 相当を zap で出す。
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("http request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Server は HTTP サーバーのライフサイクルを管理する。
type Server struct {
	config Config
	http   *http.Server
	log    *zap.Logger
}

// NewServer は handler を cfg で待ち受ける Server を返す。
func NewServer(handler http.Handler, cfg Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	return &Server{
		config: cfg,
		log:    log,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

// Run は ctx がキャンセルされるまで待ち受け、その後グレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve は ln で待ち受ける（テストでは任意ポートの listener を渡す）。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
