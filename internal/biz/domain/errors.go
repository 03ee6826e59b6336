package domain

import "errors"

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrNotLinked             = errors.New("account not linked")
	ErrUnknownAction         = errors.New("unknown pending action")
	ErrInvalidDate           = errors.New("invalid date")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrClassifierMalformed   = errors.New("classifier returned malformed response")
	ErrStaleCredentials      = errors.New("credentials were replaced concurrently")
	ErrRefreshFailed         = errors.New("credential refresh failed")
	ErrCalendarInsert        = errors.New("calendar insert failed")
	ErrInvalidState          = errors.New("invalid authorization state")
	ErrExchangeFailed        = errors.New("authorization code exchange failed")
)
