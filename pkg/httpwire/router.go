package httpwire

import (
	"reflect"
	"regexp"
	"strconv"
)

// Context is the ordered tuple of ambient values a Router injects into
// handlers by type (spec §3, §4.9, glossary "Router context"). Construct
// one with NewContext and Add each value once; a router looks values up
// by their static Go type.
type Context struct {
	values []reflect.Value
}

// NewContext returns an empty context tuple.
func NewContext() *Context { return &Context{} }

// Add appends v to the context tuple, available to handlers by its
// concrete type.
func (c *Context) Add(v interface{}) *Context {
	c.values = append(c.values, reflect.ValueOf(v))
	return c
}

func (c *Context) lookup(t reflect.Type) (reflect.Value, bool) {
	for _, v := range c.values {
		if v.Type() == t || (t.Kind() == reflect.Interface && v.Type().Implements(t)) {
			return v, true
		}
	}
	return reflect.Value{}, false
}

// Route binds a compile-time regex pattern and optional method filter to a
// handler (spec §3 "Router Route", §4.9). Handler must be a func whose
// parameters are satisfied positionally: first the pattern's capture
// groups (converted to the declared parameter type), then any remaining
// parameters resolved from the router's Context by type. Handler may return
// nothing, a value, an error, or a value and an error; Dispatch passes the
// value and the error back to its caller.
type Route struct {
	Pattern *regexp.Regexp
	Method  Method // MethodUnknown means "any method"
	Handler interface{}

	handlerValue reflect.Value
	handlerType  reflect.Type
}

// NewRoute compiles pattern and checks that handler is a function, panicking
// on either mistake. Whether each handler parameter can be bound is only
// checked when Dispatch matches the route.
func NewRoute(pattern string, method Method, handler interface{}) *Route {
	re := regexp.MustCompile(pattern)
	hv := reflect.ValueOf(handler)
	if hv.Kind() != reflect.Func {
		panic("httpwire: route handler must be a function")
	}
	return &Route{
		Pattern:      re,
		Method:       method,
		Handler:      handler,
		handlerValue: hv,
		handlerType:  hv.Type(),
	}
}

// matches reports whether the route applies to method and path, returning
// the capture groups (excluding the full match) on success.
func (r *Route) matches(method Method, path string) ([]string, bool) {
	if r.Method != MethodUnknown && r.Method != method {
		return nil, false
	}
	m := r.Pattern.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}

// Router multiplexes requests by URI pattern and method (spec §4.9). Routes
// are matched in declaration order; the first match wins, so a catch-all
// pattern belongs last. A Router holds no per-request state.
type Router struct {
	context *Context
	routes  []*Route
}

// NewRouter constructs a router over the given ambient context tuple.
func NewRouter(ctx *Context) *Router {
	if ctx == nil {
		ctx = NewContext()
	}
	return &Router{context: ctx}
}

// Handle registers a route. Routes are tried in the order they are added.
func (rt *Router) Handle(pattern string, method Method, handler interface{}) *Router {
	rt.routes = append(rt.routes, NewRoute(pattern, method, handler))
	return rt
}

// Dispatch finds the first route matching (method, path) and invokes its
// handler with freshly constructed capture and context arguments (spec
// §4.9 "Handler invocation"). Returns NotFoundError if no route matches.
func (rt *Router) Dispatch(method Method, path string, extra ...interface{}) (interface{}, error) {
	for _, route := range rt.routes {
		captures, ok := route.matches(method, path)
		if !ok {
			continue
		}
		args, err := rt.bindArgs(route, captures, extra)
		if err != nil {
			return nil, err
		}
		results := route.handlerValue.Call(args)
		return unpackResults(results)
	}
	return nil, &NotFoundError{Path: path}
}

func (rt *Router) bindArgs(route *Route, captures []string, extra []interface{}) ([]reflect.Value, error) {
	t := route.handlerType
	numIn := t.NumIn()
	args := make([]reflect.Value, numIn)
	capIdx := 0
	for i := 0; i < numIn; i++ {
		paramType := t.In(i)
		if capIdx < len(captures) && acceptsCapture(paramType) {
			v, err := convertCapture(captures[capIdx], paramType)
			if err != nil {
				return nil, err
			}
			args[i] = v
			capIdx++
			continue
		}
		if v, ok := rt.context.lookup(paramType); ok {
			args[i] = v
			continue
		}
		for _, e := range extra {
			ev := reflect.ValueOf(e)
			if ev.Type() == paramType {
				args[i] = ev
				break
			}
		}
		if !args[i].IsValid() {
			return nil, &NotFoundError{Path: "no context value of type " + paramType.String()}
		}
	}
	return args, nil
}

// acceptsCapture reports whether paramType is one of the string-parseable
// domain types a regex capture can be coerced into (spec §3 "Router
// Route": "a string-parse trait"): strings, integers, floats.
func acceptsCapture(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// convertCapture parses a regex capture group's raw text into paramType,
// the type a handler declared for that positional argument (spec §4.9:
// captures are "bound positionally, converted to the handler's declared
// parameter type").
func convertCapture(raw string, paramType reflect.Type) (reflect.Value, error) {
	switch paramType.Kind() {
	case reflect.String:
		return reflect.ValueOf(raw).Convert(paramType), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return reflect.Value{}, &BadRequestError{Reason: "path capture " + strconv.Quote(raw) + " is not an integer"}
		}
		v := reflect.New(paramType).Elem()
		v.SetInt(n)
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return reflect.Value{}, &BadRequestError{Reason: "path capture " + strconv.Quote(raw) + " is not an unsigned integer"}
		}
		v := reflect.New(paramType).Elem()
		v.SetUint(n)
		return v, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return reflect.Value{}, &BadRequestError{Reason: "path capture " + strconv.Quote(raw) + " is not a number"}
		}
		v := reflect.New(paramType).Elem()
		v.SetFloat(f)
		return v, nil
	}
	return reflect.Value{}, &BadRequestError{Reason: "unsupported path capture parameter type " + paramType.String()}
}

func unpackResults(results []reflect.Value) (interface{}, error) {
	errorType := reflect.TypeOf((*error)(nil)).Elem()
	var value interface{}
	var err error
	for _, r := range results {
		if r.Type() == errorType {
			if !r.IsNil() {
				err = r.Interface().(error)
			}
			continue
		}
		value = r.Interface()
	}
	return value, err
}
