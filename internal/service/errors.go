package service

import "errors"

// Common service-level errors.
var (
	// ErrKeywordRequired is returned when a search is attempted without a
	// keyword.
	ErrKeywordRequired = errors.New("search keyword is required")

	// ErrInvalidCredentials is returned on login failure. The same error
	// covers unknown email and wrong password so responses don't reveal
	// which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
