package handlers

import (
	"net/http"
)

type Handler func(req *Request) Response

// Resource has one entry point per supported method.
type Resource interface {
	Post(req *Request) Response
	Get(req *Request) Response
	Put(req *Request) Response
	Delete(req *Request) Response
}

type Router struct {
	routes map[string]Handler
}

func NewRouter(users, tokens, checks Resource) *Router {
	return &Router{
		routes: map[string]Handler{
			"ping":   Ping,
			"users":  Methods(users),
			"tokens": Methods(tokens),
			"checks": Methods(checks),
		},
	}
}

// Route looks up the handler for req.Path, falling back to NotFound.
func (r *Router) Route(req *Request) Response {
	handler, ok := r.routes[req.Path]
	if !ok {
		handler = NotFound
	}
	return handler(req)
}

// Methods dispatches on the request method; anything else is 405.
func Methods(resource Resource) Handler {
	return func(req *Request) Response {
		switch req.Method {
		case "post":
			return resource.Post(req)
		case "get":
			return resource.Get(req)
		case "put":
			return resource.Put(req)
		case "delete":
			return resource.Delete(req)
		default:
			return message(http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func Ping(req *Request) Response {
	return message(http.StatusOK, "Server is up and running")
}

func NotFound(req *Request) Response {
	return message(http.StatusNotFound, "Not found")
}
