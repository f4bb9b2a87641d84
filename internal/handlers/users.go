package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.checkup/internal/keylock"
	"uk.co.dudmesh.checkup/internal/model"
	"uk.co.dudmesh.checkup/internal/store"
	"uk.co.dudmesh.checkup/internal/validate"
)

const (
	msgMissingFields   = "Missing required fields"
	msgNothingToUpdate = "Missing fields to update"
	msgInvalidToken    = "Missing required token in header, or token is invalid"
	msgUserExists      = "A user with that email address already exists"
	msgUserNotFound    = "The specified user does not exist"
	msgUserMissing     = "Could not find the specified user"
)

var createUserSchema = validate.Schema{
	validate.Required("firstName", validate.NonEmptyString()),
	validate.Required("lastName", validate.NonEmptyString()),
	validate.Required("email", validate.Email()),
	validate.Required("password", validate.NonEmptyString()),
	validate.Required("tosAgreement", validate.True()),
}

var updateUserSchema = validate.Schema{
	validate.Required("email", validate.Email()),
	validate.Optional("firstName", validate.NonEmptyString()),
	validate.Optional("lastName", validate.NonEmptyString()),
	validate.Optional("password", validate.NonEmptyString()),
}

var userQuerySchema = validate.Schema{
	validate.Required("email", validate.Email()),
}

type Users struct {
	db     Database
	tokens TokenAuthority
	codec  Codec
	locks  *keylock.Locker
}

func NewUsers(db Database, tokens TokenAuthority, codec Codec, locks *keylock.Locker) *Users {
	return &Users{db: db, tokens: tokens, codec: codec, locks: locks}
}

// Post signs a new user up. Required: firstName, lastName, email, password, tosAgreement.
func (h *Users) Post(req *Request) Response {
	values, valid := createUserSchema.Apply(req.Payload)
	if !valid {
		return message(http.StatusBadRequest, msgMissingFields)
	}
	params := &model.CreateUserParams{
		FirstName:    values.String("firstName"),
		LastName:     values.String("lastName"),
		Email:        values.String("email"),
		Password:     values.String("password"),
		TOSAgreement: values.Bool("tosAgreement"),
	}

	unlock := h.locks.Lock(params.Email)
	defer unlock()

	err := h.db.Read(store.Users, params.Email, &model.User{})
	if err == nil {
		return message(http.StatusBadRequest, msgUserExists)
	}
	if !missing(err) {
		return internalError("Could not create the new user", err)
	}

	hashedPassword, err := h.codec.Hash(params.Password)
	if err != nil {
		return internalError("Could not hash the user's password", err)
	}

	user := &model.User{
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		Email:          params.Email,
		HashedPassword: hashedPassword,
		TOSAgreement:   params.TOSAgreement,
	}
	err = h.db.Create(store.Users, user.Email, user)
	if errors.Is(err, model.ErrorAlreadyExists) {
		return message(http.StatusBadRequest, msgUserExists)
	}
	if errors.Is(err, model.ErrorInvalidKey) {
		return message(http.StatusBadRequest, msgMissingFields)
	}
	if err != nil {
		return internalError("Could not create the new user", err)
	}

	return message(http.StatusOK, "Successfully created a new user")
}

// Get returns the caller's own profile without the password hash.
func (h *Users) Get(req *Request) Response {
	values, valid := userQuerySchema.Apply(req.QueryValues())
	if !valid {
		return message(http.StatusBadRequest, msgMissingFields)
	}
	email := values.String("email")

	if !h.tokens.Verify(req.Token(), email) {
		return message(http.StatusForbidden, msgInvalidToken)
	}

	user := &model.User{}
	if err := h.db.Read(store.Users, email, user); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgUserNotFound)
		}
		return internalError("Could not read the user", err)
	}

	user.HashedPassword = ""
	return reply(user)
}

// Put updates firstName, lastName and/or password; at least one is required.
func (h *Users) Put(req *Request) Response {
	values, valid := updateUserSchema.Apply(req.Payload)
	if !valid {
		return message(http.StatusBadRequest, msgMissingFields)
	}
	if !values.Any("firstName", "lastName", "password") {
		return message(http.StatusBadRequest, msgNothingToUpdate)
	}
	email := values.String("email")

	if !h.tokens.Verify(req.Token(), email) {
		return message(http.StatusForbidden, msgInvalidToken)
	}

	unlock := h.locks.Lock(email)
	defer unlock()

	user := &model.User{}
	if err := h.db.Read(store.Users, email, user); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgUserNotFound)
		}
		return internalError("Could not read the user", err)
	}

	if values.Has("firstName") {
		user.FirstName = values.String("firstName")
	}
	if values.Has("lastName") {
		user.LastName = values.String("lastName")
	}
	if values.Has("password") {
		hashedPassword, err := h.codec.Hash(values.String("password"))
		if err != nil {
			return internalError("Could not hash the user's password", err)
		}
		user.HashedPassword = hashedPassword
	}

	if err := h.db.Update(store.Users, email, user); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgUserNotFound)
		}
		return internalError("Could not update the user", err)
	}

	return message(http.StatusOK, "User successfully updated")
}

// Delete removes the user and then every check the user owns. The user
// document is gone even when some check deletions fail.
func (h *Users) Delete(req *Request) Response {
	values, valid := userQuerySchema.Apply(req.QueryValues())
	if !valid {
		return message(http.StatusBadRequest, msgMissingFields)
	}
	email := values.String("email")

	if !h.tokens.Verify(req.Token(), email) {
		return message(http.StatusForbidden, msgInvalidToken)
	}

	unlock := h.locks.Lock(email)
	defer unlock()

	user := &model.User{}
	if err := h.db.Read(store.Users, email, user); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgUserMissing)
		}
		return internalError("Could not read the user", err)
	}

	if err := h.db.Delete(store.Users, email); err != nil {
		if missing(err) {
			return message(http.StatusBadRequest, msgUserMissing)
		}
		return internalError("Could not delete the specified user", err)
	}

	var errs []error
	for _, checkID := range user.Checks {
		err := h.db.Delete(store.Checks, checkID)
		if missing(err) {
			log.Warnf("user %s referenced missing check %s", email, checkID)
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return internalError("Errors encountered while attempting to delete all of the user's checks", err)
	}

	return message(http.StatusOK, "User successfully deleted")
}
