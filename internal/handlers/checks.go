package handlers

import (
	"fmt"
	"net/http"

	"uk.co.dudmesh.checkup/internal/keylock"
	"uk.co.dudmesh.checkup/internal/model"
	"uk.co.dudmesh.checkup/internal/store"
	"uk.co.dudmesh.checkup/internal/validate"
)

const (
	msgMissingCheckField = "Missing required field"
	msgInvalidCheck      = "Missing required inputs, or inputs are invalid"
	msgCheckNotFound     = "Check ID did not exist"
	msgCheckMissing      = "The specified check ID does not exist"
)

var checkFields = []string{"protocol", "url", "method", "successCodes", "timeoutSeconds"}

func checkField(name string, required bool) validate.Field {
	var rule validate.Rule
	switch name {
	case "protocol":
		rule = validate.OneOf(model.CheckProtocols...)
	case "url":
		rule = validate.NonEmptyString()
	case "method":
		rule = validate.OneOf(model.CheckMethods...)
	case "successCodes":
		rule = validate.NonEmptyInts()
	case "timeoutSeconds":
		rule = validate.IntBetween(model.MinCheckTimeout, model.MaxCheckTimeout)
	}
	return validate.Field{Name: name, Required: required, Rule: rule}
}

var createCheckSchema = func() validate.Schema {
	schema := validate.Schema{}
	for _, name := range checkFields {
		schema = append(schema, checkField(name, true))
	}
	return schema
}()

var updateCheckSchema = func() validate.Schema {
	schema := validate.Schema{validate.Required("id", validate.Length(model.CheckIDLength))}
	for _, name := range checkFields {
		schema = append(schema, checkField(name, false))
	}
	return schema
}()

var checkQuerySchema = validate.Schema{
	validate.Required("id", validate.Length(model.CheckIDLength)),
}

type Checks struct {
	db        Database
	tokens    TokenAuthority
	locks     *keylock.Locker
	maxChecks int
}

func NewChecks(db Database, tokens TokenAuthority, locks *keylock.Locker, maxChecks int) *Checks {
	return &Checks{db: db, tokens: tokens, locks: locks, maxChecks: maxChecks}
}

// Post creates a check for the owner of the token header, subject to the
// per-user quota. The check document is written before the owner's list.
func (h *Checks) Post(req *Request) Response {
	values, valid := createCheckSchema.Apply(req.Payload)
	if !valid {
		return message(http.StatusBadRequest, msgInvalidCheck)
	}

	tokenID := req.Token()
	if len(tokenID) != model.TokenIDLength {
		return message(http.StatusForbidden, msgInvalidToken)
	}
	token, err := h.tokens.Lookup(tokenID)
	if err != nil {
		return message(http.StatusForbidden, msgInvalidToken)
	}
	if !h.tokens.Verify(tokenID, token.Email) {
		return message(http.StatusForbidden, msgInvalidToken)
	}

	unlock := h.locks.Lock(token.Email)
	defer unlock()

	user := &model.User{}
	if err := h.db.Read(store.Users, token.Email, user); err != nil {
		if missing(err) {
			return message(http.StatusForbidden, msgInvalidToken)
		}
		return internalError("Could not read the user", err)
	}

	if len(user.Checks) >= h.maxChecks {
		return message(http.StatusBadRequest, fmt.Sprintf("The user already has the maximum number of checks (%d)", h.maxChecks))
	}

	checkID, err := model.CreateID(model.CheckIDLength)
	if err != nil {
		return internalError("Could not create the new check", err)
	}
	check := &model.Check{
		ID:             checkID,
		UserEmail:      user.Email,
		Protocol:       values.String("protocol"),
		URL:            values.String("url"),
		Method:         values.String("method"),
		SuccessCodes:   values.Ints("successCodes"),
		TimeoutSeconds: values.Int("timeoutSeconds"),
	}
	if err := h.db.Create(store.Checks, checkID, check); err != nil {
		return internalError("Could not create the new check", err)
	}

	user.Checks = append(user.Checks, checkID)
	if err := h.db.Update(store.Users, user.Email, user); err != nil {
		return internalError("Could not update the user with the new check", err)
	}

	return reply(check)
}

// Get returns a check to its owner. A missing check is 404.
func (h *Checks) Get(req *Request) Response {
	values, valid := checkQuerySchema.Apply(req.QueryValues())
	if !valid {
		return message(http.StatusBadRequest, msgMissingCheckField)
	}

	check := &model.Check{}
	if err := h.db.Read(store.Checks, values.String("id"), check); err != nil {
		if missing(err) {
			return message(http.StatusNotFound, msgCheckMissing)
		}
		return internalError("Could not read the check", err)
	}

	if !h.tokens.Verify(req.Token(), check.UserEmail) {
		return message(http.StatusForbidden, msgInvalidToken)
	}
	return reply(check)
}

// Put overwrites only the supplied fields; id plus one field is required.
func (h *Checks) Put(req *Request) Response {
	values, valid := updateCheckSchema.Apply(req.Payload)
	if !valid {
		return message(http.StatusBadRequest, msgMissingCheckField)
	}
	if !values.Any(checkFields...) {
		return message(http.StatusBadRequest, msgNothingToUpdate)
	}
	id := values.String("id")

	check := &model.Check{}
	if err := h.db.Read(store.Checks, id, check); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgCheckNotFound)
		}
		return internalError("Could not read the check", err)
	}

	if !h.tokens.Verify(req.Token(), check.UserEmail) {
		return message(http.StatusForbidden, msgInvalidToken)
	}

	unlock := h.locks.Lock(check.UserEmail)
	defer unlock()

	// the check may have been deleted while we waited for the owner's lock
	if err := h.db.Read(store.Checks, id, check); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgCheckNotFound)
		}
		return internalError("Could not read the check", err)
	}

	if values.Has("protocol") {
		check.Protocol = values.String("protocol")
	}
	if values.Has("url") {
		check.URL = values.String("url")
	}
	if values.Has("method") {
		check.Method = values.String("method")
	}
	if values.Has("successCodes") {
		check.SuccessCodes = values.Ints("successCodes")
	}
	if values.Has("timeoutSeconds") {
		check.TimeoutSeconds = values.Int("timeoutSeconds")
	}

	if err := h.db.Update(store.Checks, id, check); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgCheckNotFound)
		}
		return internalError("Could not update the check", err)
	}
	return reply(check)
}

// Delete removes the check and then its id from the owner's list. If the
// second step fails the user keeps a dangling reference.
func (h *Checks) Delete(req *Request) Response {
	values, valid := checkQuerySchema.Apply(req.QueryValues())
	if !valid {
		return message(http.StatusBadRequest, msgMissingCheckField)
	}
	id := values.String("id")

	check := &model.Check{}
	if err := h.db.Read(store.Checks, id, check); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgCheckMissing)
		}
		return internalError("Could not read the check", err)
	}

	if !h.tokens.Verify(req.Token(), check.UserEmail) {
		return message(http.StatusForbidden, msgInvalidToken)
	}

	unlock := h.locks.Lock(check.UserEmail)
	defer unlock()

	if err := h.db.Delete(store.Checks, id); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgCheckMissing)
		}
		return internalError("Could not delete the check data", err)
	}

	user := &model.User{}
	if err := h.db.Read(store.Users, check.UserEmail, user); err != nil {
		return internalError("Could not find the user who created the check, so could not remove the check from the list of checks on the user object", err)
	}

	if !user.RemoveCheck(id) {
		return internalError("Could not find the check on the user's object, so could not remove it", fmt.Errorf("check %s not listed on user %s", id, user.Email))
	}

	if err := h.db.Update(store.Users, user.Email, user); err != nil {
		return internalError("Could not update the user", err)
	}
	return reply(struct{}{})
}
