package routes

import "net/http"

// Route binds an HTTP method and path to a handler. Path is relative to
// the enclosing group's prefix.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Pattern returns the ServeMux pattern for the route under prefix.
func (r Route) Pattern(prefix string) string {
	return r.Method + " " + prefix + r.Path
}
