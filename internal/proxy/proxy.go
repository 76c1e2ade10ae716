// Package proxy wires the Router, Upstream Selector, Forwarder, and Metrics
// Registry into the single Proxy aggregate that owns all process-lifetime
// state and exposes the listener's http.Handler.
package proxy

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/samims/reverse-proxy/internal/config"
	"github.com/samims/reverse-proxy/internal/forwarder"
	"github.com/samims/reverse-proxy/internal/logger"
	"github.com/samims/reverse-proxy/internal/metrics"
	"github.com/samims/reverse-proxy/internal/router"
	"github.com/samims/reverse-proxy/internal/selector"
)

// routeState bundles a route's static config with its mutable selector.
type routeState struct {
	route    config.Route
	selector *selector.Selector
}

// Proxy is the top-level aggregate. It exclusively owns the Configuration,
// every route's runtime state, and the Metrics Registry; the Forwarder only
// borrows references to them for the duration of a single request.
type Proxy struct {
	cfg       *config.Config
	router    *router.Router
	states    map[string]*routeState
	forwarder *forwarder.Forwarder
	metrics   *metrics.Registry
	logger    *logger.Logger
}

// New builds a Proxy from a loaded, validated configuration.
func New(cfg *config.Config, log *logger.Logger) *Proxy {
	states := make(map[string]*routeState, len(cfg.Routes))
	routeNames := make([]string, 0, len(cfg.Routes))

	for _, route := range cfg.Routes {
		states[route.Name] = &routeState{
			route:    route,
			selector: selector.New(route.Upstreams),
		}
		routeNames = append(routeNames, route.Name)
	}

	return &Proxy{
		cfg:       cfg,
		router:    router.New(cfg.Routes),
		states:    states,
		forwarder: forwarder.New(forwarder.DefaultTimeout, log),
		metrics:   metrics.NewRegistry(routeNames),
		logger:    log.WithComponent("proxy"),
	}
}

// Handler builds the top-level HTTP handler: the metrics endpoint mounted
// ahead of the routed catch-all, exactly as the spec requires (the metrics
// path is matched before the Router, not as a configurable route).
func (p *Proxy) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get(p.cfg.MetricsPath, p.metricsHandler)
	r.HandleFunc("/*", p.proxyHandler)

	return r
}

func (p *Proxy) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	if err := p.metrics.Render(w); err != nil {
		p.logger.LogError(r.Context(), err, "failed to render metrics")
	}
}

// proxyHandler resolves the route, selects an upstream, forwards the
// request, and updates metrics before returning.
func (p *Proxy) proxyHandler(w http.ResponseWriter, r *http.Request) {
	route, ok := p.router.Match(r.URL.Path, r.Method)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	state := p.states[route.Name]
	upstream := state.selector.Next()

	result := p.forwarder.Forward(w, r, upstream, route.RewritePath)

	switch result.Outcome {
	case forwarder.Success:
		p.metrics.RecordSuccess(route.Name, result.ElapsedMs)
	default:
		p.metrics.RecordFailure(route.Name)
	}

	p.logger.LogRequest(r.Context(), route.Name, r.Method, r.URL.Path, result.StatusCode, result.ElapsedMs)
}
