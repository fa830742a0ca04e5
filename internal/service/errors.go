package service

import "errors"

var (
	// ErrInvalidInput covers malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is the single error for any failed login. It
	// does not distinguish an unknown account from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidLicenseKey is returned when a license key is not recognized.
	ErrInvalidLicenseKey = errors.New("invalid license key")

	// ErrUnauthorized is returned when the session is missing, expired or
	// lacks the required role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSurveyClosed is returned when voting on a survey that is not active.
	ErrSurveyClosed = errors.New("survey is closed")
)
