package mock

import (
	"net/http"
	"regexp"
	"strings"
)

// HandlerFunc serves one route. params holds the {name} path segments.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, params map[string]string)

// Route represents a mock route
type Route struct {
	Method      string
	PathPattern string
	PathRegex   *regexp.Regexp
	Name        string
	Handler     HandlerFunc
}

// Router matches incoming requests to routes. Paths match case-insensitively.
type Router struct {
	routes []*Route
}

func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// Handle registers a route such as ("GET", "/v1/WeekTemplate/{id}")
func (r *Router) Handle(method, pattern, name string, h HandlerFunc) {
	pattern = normalizePath(pattern)
	r.routes = append(r.routes, &Route{
		Method:      method,
		PathPattern: pattern,
		PathRegex:   createPathRegex(pattern),
		Name:        name,
		Handler:     h,
	})
}

// Match finds a route matching the given method and path. pathFound reports
// whether any route matched the path, so a nil route with pathFound set means
// the method is not allowed.
func (r *Router) Match(method, path string) (route *Route, params map[string]string, pathFound bool) {
	path = normalizePath(path)
	pathMatched := false

	for _, rt := range r.routes {
		params := matchPath(rt, path)
		if params == nil {
			continue
		}
		pathMatched = true
		if strings.EqualFold(rt.Method, method) {
			return rt, params, true
		}
	}

	return nil, nil, pathMatched
}

func (r *Router) Routes() []*Route {
	return r.routes
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

var paramPattern = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)

func createPathRegex(pattern string) *regexp.Regexp {
	var b strings.Builder
	last := 0
	for _, loc := range paramPattern.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		b.WriteString(`(?P<` + pattern[loc[2]:loc[3]] + `>[^/]+)`)
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	return regexp.MustCompile("(?i)^" + b.String() + "$")
}

func matchPath(route *Route, path string) map[string]string {
	matches := route.PathRegex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}
	params := make(map[string]string)
	for i, name := range route.PathRegex.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = matches[i]
		}
	}
	return params
}
