package routes

import "net/http"

// Group organizes routes under a common prefix. Children inherit the
// prefix of their parent.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux and returns
// the registered patterns in registration order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		walk("", group, func(pattern string, route Route) {
			mux.HandleFunc(pattern, route.Handler)
			patterns = append(patterns, pattern)
		})
	}
	return patterns
}

// Patterns lists the method-qualified patterns the groups would register.
func Patterns(groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		walk("", group, func(pattern string, _ Route) {
			patterns = append(patterns, pattern)
		})
	}
	return patterns
}

func walk(parentPrefix string, group Group, visit func(string, Route)) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		visit(route.Pattern(fullPrefix), route)
	}
	for _, child := range group.Children {
		walk(fullPrefix, child, visit)
	}
}
