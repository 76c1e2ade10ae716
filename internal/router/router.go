// Package router resolves an inbound request to a configured route.
//
// The Router is a pure, stateless read of the immutable configuration and is
// safe for concurrent use without synchronization.
package router

import "github.com/samims/reverse-proxy/internal/config"

// Router matches inbound requests against a configured, ordered route set.
type Router struct {
	routes []config.Route
}

// New builds a Router over routes in the order they appear in the config.
func New(routes []config.Route) *Router {
	return &Router{routes: routes}
}

// Match scans the configured routes in order and returns the first whose
// match_path equals path and whose match_method is absent or equals method.
// The caller is responsible for stripping the query string before calling.
func (r *Router) Match(path, method string) (*config.Route, bool) {
	for i := range r.routes {
		route := &r.routes[i]
		if route.MatchPath != path {
			continue
		}
		if route.MatchMethod != "" && route.MatchMethod != method {
			continue
		}
		return route, true
	}
	return nil, false
}
