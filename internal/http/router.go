package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/service/auth"
	"github.com/pagecraft/api/internal/service/ledger"
	"github.com/pagecraft/api/internal/service/palette"
	"github.com/pagecraft/api/internal/service/subscription"
	"github.com/pagecraft/api/internal/service/template"
	"github.com/pagecraft/api/internal/ws"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	auth         auth.Service
	ledger       ledger.Service
	subscription subscription.Service
	palette      palette.Service
	template     template.Service
	upgrader     websocket.Upgrader
	limiter      RateLimiter
	dbHealth     func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitRegister  = 5
	rateLimitLogin     = 12
	rateLimitUserWrite = 60
	rateLimitUserRead  = 120
	rateLimitPublic    = 60
	rateLimitStream    = 30
	healthCheckTimeout = 2 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, ledgerSvc ledger.Service, subSvc subscription.Service, paletteSvc palette.Service, templateSvc template.Service, limiter RateLimiter, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:          http.NewServeMux(),
		logger:       logger,
		auth:         authSvc,
		ledger:       ledgerSvc,
		subscription: subSvc,
		palette:      paletteSvc,
		template:     templateSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:  limiter,
		dbHealth: dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit("healthz", r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.HandleFunc("/api/auth/register", r.audit("auth_register", r.withRateLimit("auth_register", rateLimitRegister, rateWindowDefault, rateLimitKeyIP, r.handleRegister)))
	r.mux.HandleFunc("/api/auth/login", r.audit("auth_login", r.withRateLimit("auth_login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)))
	r.mux.HandleFunc("/api/users/me", r.audit("users_me", r.handlerAuthRate("users_me", rateLimitUserWrite, rateWindowDefault, r.handleMe)))
	r.mux.HandleFunc("/api/coins", r.audit("coins", r.handlerAuthRate("coins", rateLimitUserRead, rateWindowDefault, r.handleCoins)))
	r.mux.HandleFunc("/api/coins/purchase", r.audit("coins_purchase", r.handlerAuthRate("coins_purchase", rateLimitUserWrite, rateWindowDefault, r.handleCoinPurchase)))
	r.mux.HandleFunc("/api/coins/history", r.audit("coins_history", r.handlerAuthRate("coins_history", rateLimitUserRead, rateWindowDefault, r.handleCoinHistory)))
	r.mux.HandleFunc("/api/subscriptions", r.audit("subscriptions", r.handlerAuthRate("subscriptions", rateLimitUserWrite, rateWindowDefault, r.handleSubscriptions)))
	r.mux.HandleFunc("/api/subscriptions/", r.audit("subscription_by_id", r.handlerAuthRate("subscription_by_id", rateLimitUserWrite, rateWindowDefault, r.handleSubscriptionByID)))
	r.mux.HandleFunc("/api/palette", r.audit("palette_generate", r.withRateLimit("palette_generate", rateLimitPublic, rateWindowDefault, rateLimitKeyIP, r.handlePaletteGenerate)))
	r.mux.HandleFunc("/api/palette/theme", r.audit("palette_theme", r.withRateLimit("palette_theme", rateLimitPublic, rateWindowDefault, rateLimitKeyIP, r.handlePaletteTheme)))
	r.mux.HandleFunc("/api/palettes", r.audit("palettes", r.handlerAuthRate("palettes", rateLimitUserWrite, rateWindowDefault, r.handlePalettes)))
	r.mux.HandleFunc("/api/palettes/", r.audit("palette_by_id", r.handlerAuthRate("palette_by_id", rateLimitUserWrite, rateWindowDefault, r.handlePaletteByID)))
	r.mux.HandleFunc("/api/templates", r.audit("templates", r.withRateLimit("templates", rateLimitUserRead, rateWindowDefault, rateLimitKeyIP, r.handleTemplates)))
	r.mux.HandleFunc("/api/templates/", r.audit("template_by_id", r.withRateLimit("template_by_id", rateLimitUserRead, rateWindowDefault, rateLimitKeyIP, r.handleTemplateByID)))
	r.mux.HandleFunc("/ws/preview", r.audit("preview_ws", r.handlerAuthRate("preview_ws", rateLimitStream, rateWindowRealtime, r.handlePreviewWS)))
	r.mux.HandleFunc("/api/preview/events", r.audit("preview_sse", r.handlerAuthRate("preview_sse", rateLimitStream, rateWindowRealtime, r.handlePreviewSSE)))
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, tokens, err := r.auth.Register(req.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":   userView(user),
		"tokens": tokens,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, tokens, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":   userView(user),
		"tokens": tokens,
	})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		user, err := r.auth.Profile(req.Context(), info.UserID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userView(user))
	case http.MethodPut:
		var payload struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := r.auth.Update(req.Context(), info.UserID, auth.UpdateInput{
			Username: payload.Username,
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userView(user))
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCoins(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		coins, err := r.ledger.Balance(req.Context(), info.UserID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"coins": coins})
	case http.MethodPost:
		var payload struct {
			Amount int    `json:"amount"`
			Action string `json:"action"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		coins, err := r.ledger.Update(req.Context(), info.UserID, payload.Action, payload.Amount)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"coins": coins})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCoinPurchase(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	var payload struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	coins, err := r.ledger.Purchase(req.Context(), info.UserID, payload.Amount)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"coins":   coins,
	})
}

func (r *Router) handleCoinHistory(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	page, pageSize := pageParams(req)
	entries, pagination, err := r.ledger.History(req.Context(), info.UserID, page, pageSize)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.CoinTransaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": entries,
		"pagination":   pagination,
	})
}

func (r *Router) handleSubscriptions(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			SubscriptionType string `json:"subscriptionType"`
			PaymentMethodID  string `json:"paymentMethodId"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		sub, err := r.subscription.Subscribe(req.Context(), info.UserID, payload.SubscriptionType, payload.PaymentMethodID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"subscription": sub})
	case http.MethodGet:
		page, pageSize := pageParams(req)
		subs, pagination, err := r.subscription.List(req.Context(), info.UserID, info.Admin, page, pageSize)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if subs == nil {
			subs = []domain.Subscription{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"subscriptions": subs,
			"pagination":    pagination,
		})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleSubscriptionByID(w http.ResponseWriter, req *http.Request) {
	subscriptionID := strings.TrimPrefix(req.URL.Path, "/api/subscriptions/")
	if subscriptionID == "" || strings.Contains(subscriptionID, "/") {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodDelete {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	sub, err := r.subscription.Cancel(req.Context(), info.UserID, subscriptionID, info.Admin)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "subscription canceled",
		"subscription": sub,
	})
}

func (r *Router) handlePaletteGenerate(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		BaseColor string `json:"baseColor"`
		Scheme    string `json:"scheme"`
		Count     int    `json:"count"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	colors, err := r.palette.Generate(payload.BaseColor, payload.Scheme, payload.Count)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"palette": colors})
}

func (r *Router) handlePaletteTheme(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Colors map[string]string `json:"colors"`
		Mode   string            `json:"mode"`
		Mood   string            `json:"mood"`
		Scheme string            `json:"scheme"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	theme, err := r.palette.Theme(payload.Colors, payload.Mode, payload.Mood, payload.Scheme)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"colors": theme})
}

func (r *Router) handlePalettes(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			Name   string   `json:"name"`
			Colors []string `json:"colors"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		saved, err := r.palette.Save(req.Context(), info.UserID, payload.Name, payload.Colors)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	case http.MethodGet:
		page, pageSize := pageParams(req)
		palettes, pagination, err := r.palette.List(req.Context(), info.UserID, info.Admin, page, pageSize)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if palettes == nil {
			palettes = []domain.Palette{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"palettes":   palettes,
			"pagination": pagination,
		})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handlePaletteByID(w http.ResponseWriter, req *http.Request) {
	paletteID := strings.TrimPrefix(req.URL.Path, "/api/palettes/")
	if paletteID == "" || strings.Contains(paletteID, "/") {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodDelete {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	if err := r.palette.Delete(req.Context(), info.UserID, paletteID, info.Admin); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "palette deleted"})
}

func (r *Router) handleTemplates(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	query := req.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	templates, pagination, err := r.template.List(req.Context(), template.ListInput{
		Page:   page,
		Limit:  limit,
		Search: query.Get("search"),
		SortBy: query.Get("sortBy"),
		Order:  query.Get("order"),
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"templates":  templates,
		"pagination": pagination,
	})
}

func (r *Router) handleTemplateByID(w http.ResponseWriter, req *http.Request) {
	templateID := strings.TrimPrefix(req.URL.Path, "/api/templates/")
	if templateID == "" || strings.Contains(templateID, "/") {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	tpl, err := r.template.Get(req.Context(), templateID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (r *Router) handlePreviewWS(w http.ResponseWriter, req *http.Request) {
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	hub := r.palette.Hub()
	hub.Register(info.UserID, client)
	go func() {
		defer func() {
			hub.Unregister(info.UserID, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (r *Router) handlePreviewSSE(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.mustAuthInfo(w, req)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := ws.NewSSEClient(w, flusher, r.logger)
	hub := r.palette.Hub()
	hub.Register(info.UserID, client)
	defer func() {
		hub.Unregister(info.UserID, client)
		client.Close()
	}()
	<-req.Context().Done()
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// mustAuthInfo reads auth metadata placed on the context by requireAuth.
func (r *Router) mustAuthInfo(w http.ResponseWriter, req *http.Request) (authInfo, bool) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return authInfo{}, false
	}
	return info, true
}

func userView(user *domain.User) map[string]any {
	return map[string]any{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"coins":     user.Coins,
		"admin":     user.Admin,
		"createdAt": user.CreatedAt,
	}
}

func pageParams(req *http.Request) (int, int) {
	query := req.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))
	return page, pageSize
}

func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, route, status, duration)
		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", info.UserID)
			if info.Admin {
				fields = append(fields, "admin", true)
			}
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (sr *statusRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := sr.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
