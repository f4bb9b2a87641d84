package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.checkup/internal/model"
	"uk.co.dudmesh.checkup/internal/store"
)

const TokenHeader = "token"

// Request is what the transport hands to a handler: a lowercased method, a
// path with surrounding slashes trimmed, and a decoded JSON object payload.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Payload map[string]interface{}
}

// QueryValues flattens the query string to its first value per key.
func (r *Request) QueryValues() map[string]interface{} {
	values := make(map[string]interface{}, len(r.Query))
	for k := range r.Query {
		values[k] = r.Query.Get(k)
	}
	return values
}

func (r *Request) Token() string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(TokenHeader)
}

// Response is a status code and a JSON-serializable payload.
type Response struct {
	Status  int
	Payload interface{}
}

type Message struct {
	Message string `json:"message"`
}

func message(status int, msg string) Response {
	return Response{Status: status, Payload: Message{msg}}
}

func reply(payload interface{}) Response {
	return Response{Status: http.StatusOK, Payload: payload}
}

// internalError logs the cause for operators and answers with msg only.
func internalError(msg string, err error) Response {
	log.Errorf("%s: %+v", msg, err)
	return message(http.StatusInternalServerError, msg)
}

type Database interface {
	Create(collection store.Collection, key string, doc interface{}) error
	Read(collection store.Collection, key string, doc interface{}) error
	Update(collection store.Collection, key string, doc interface{}) error
	Delete(collection store.Collection, key string) error
}

type TokenAuthority interface {
	Issue(email string) (*model.Token, error)
	Lookup(id string) (*model.Token, error)
	Verify(id, email string) bool
	Extend(id string) (*model.Token, error)
	Revoke(id string) error
}

type Codec interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// missing reports whether err means the document does not exist. Keys that
// cannot name a document count as missing.
func missing(err error) bool {
	return errors.Is(err, model.ErrorNotFound) || errors.Is(err, model.ErrorInvalidKey)
}
