package models

import (
	"errors"
	"net/http"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidAddress     = errors.New("invalid address format")
	ErrNotFound           = errors.New("resource not found")
	ErrWalletExists       = errors.New("wallet already exists")
	ErrNotOwner           = errors.New("NFT not owned by marketplace")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPaymentNotDetected = errors.New("payment not detected")
	ErrSignerUnavailable  = errors.New("marketplace signer not configured")
)

var errorMap = map[error]int{
	ErrBadRequest:         http.StatusBadRequest,
	ErrInvalidAddress:     http.StatusBadRequest,
	ErrNotFound:           http.StatusNotFound,
	ErrWalletExists:       http.StatusBadRequest,
	ErrNotOwner:           http.StatusForbidden,
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrPaymentNotDetected: http.StatusConflict,
	ErrSignerUnavailable:  http.StatusServiceUnavailable,
}

// StatusCode maps err (or anything it wraps) to an HTTP status. Unknown errors
// map to 500.
func StatusCode(err error) int {
	for target, code := range errorMap {
		if errors.Is(err, target) {
			return code
		}
	}
	var sc interface{ HTTPStatus() int }
	if errors.As(err, &sc) && sc.HTTPStatus() != 0 {
		return sc.HTTPStatus()
	}
	return http.StatusInternalServerError
}
