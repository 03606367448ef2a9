package handler

import "errors"

var (
	errInvalidBody      = errors.New("request body must be a JSON GraphQL request")
	errMethodNotAllowed = errors.New("GraphQL requests must use POST")
)
