package errs

import "errors"

var InvalidCredentials = errors.New("invalid credentials")

var (
	EmailRequired = errors.New("email is required")
	EmailTaken    = errors.New("an account with this email already exists")
)
