package model

import "errors"

var ErrorNotFound = errors.New("document not found")
var ErrorAlreadyExists = errors.New("document already exists")
var ErrorInvalidKey = errors.New("invalid document key")
var ErrorTokenExpired = errors.New("token expired")
