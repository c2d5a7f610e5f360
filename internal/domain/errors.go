package domain

import "errors"

var (
	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownSlot    = errors.New("unknown meal slot")
)
