package middleware

import (
	"net/http"
	"slices"
)

// Func wraps a handler.
type Func func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware. The first registered
// runs outermost.
type System interface {
	Use(fns ...Func)
	Apply(handler http.Handler) http.Handler
	Len() int
}

type stack struct {
	fns []Func
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fns ...Func) {
	s.fns = append(s.fns, fns...)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, fn := range slices.Backward(s.fns) {
		handler = fn(handler)
	}
	return handler
}

func (s *stack) Len() int {
	return len(s.fns)
}
