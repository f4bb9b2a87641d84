package handlers

import (
	"errors"
	"net/http"

	"uk.co.dudmesh.checkup/internal/model"
	"uk.co.dudmesh.checkup/internal/store"
	"uk.co.dudmesh.checkup/internal/validate"
)

const (
	msgMissingTokenFields = "Missing required field(s)"
	msgInvalidTokenFields = "Missing required field(s) or field(s) are invalid"
	msgPasswordMismatch   = "Password did not match the specified user's stored password"
	msgTokenNotFound      = "Specified token does not exist"
	msgTokenExpired       = "The token has already expired, and cannot be extended"
	msgTokenMissing       = "Could not find the specified token"
)

var loginSchema = validate.Schema{
	validate.Required("email", validate.Email()),
	validate.Required("password", validate.NonEmptyString()),
}

var tokenQuerySchema = validate.Schema{
	validate.Required("id", validate.Length(model.TokenIDLength)),
}

var extendTokenSchema = validate.Schema{
	validate.Required("id", validate.Length(model.TokenIDLength)),
	validate.Required("extend", validate.True()),
}

type Tokens struct {
	db     Database
	tokens TokenAuthority
	codec  Codec
}

func NewTokens(db Database, tokens TokenAuthority, codec Codec) *Tokens {
	return &Tokens{db: db, tokens: tokens, codec: codec}
}

// Post logs in: it checks the password and issues a fresh token.
func (h *Tokens) Post(req *Request) Response {
	values, valid := loginSchema.Apply(req.Payload)
	if !valid {
		return message(http.StatusBadRequest, msgMissingTokenFields)
	}
	email := values.String("email")

	user := &model.User{}
	if err := h.db.Read(store.Users, email, user); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgUserMissing)
		}
		return internalError("Could not read the user", err)
	}

	if !h.codec.Verify(values.String("password"), user.HashedPassword) {
		return message(http.StatusBadRequest, msgPasswordMismatch)
	}

	token, err := h.tokens.Issue(email)
	if err != nil {
		return internalError("Could not create the new token", err)
	}
	return reply(token)
}

// Get is the one lookup that answers 404 for a missing document.
func (h *Tokens) Get(req *Request) Response {
	values, valid := tokenQuerySchema.Apply(req.QueryValues())
	if !valid {
		return message(http.StatusBadRequest, msgMissingTokenFields)
	}

	token, err := h.tokens.Lookup(values.String("id"))
	if err != nil {
		if missing(err) {
			return message(http.StatusNotFound, msgTokenNotFound)
		}
		return internalError("Could not read the token", err)
	}
	return reply(token)
}

// Put extends an unexpired token by another hour. Required: id, extend=true.
func (h *Tokens) Put(req *Request) Response {
	values, valid := extendTokenSchema.Apply(req.Payload)
	if !valid {
		return message(http.StatusBadRequest, msgInvalidTokenFields)
	}

	token, err := h.tokens.Extend(values.String("id"))
	switch {
	case missing(err):
		return message(http.StatusBadRequest, msgTokenNotFound)
	case errors.Is(err, model.ErrorTokenExpired):
		return message(http.StatusBadRequest, msgTokenExpired)
	case err != nil:
		return internalError("Could not update the token's expiration", err)
	}
	return reply(token)
}

// Delete logs out by removing the token document.
func (h *Tokens) Delete(req *Request) Response {
	values, valid := tokenQuerySchema.Apply(req.QueryValues())
	if !valid {
		return message(http.StatusBadRequest, msgMissingTokenFields)
	}
	id := values.String("id")

	if _, err := h.tokens.Lookup(id); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgTokenMissing)
		}
		return internalError("Could not read the token", err)
	}

	if err := h.tokens.Revoke(id); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgTokenMissing)
		}
		return internalError("Could not delete the specified token", err)
	}
	return reply(struct{}{})
}
