package models

import "errors"

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrNotAMember       = errors.New("user is not a member of this pool")
	ErrBallotLocked     = errors.New("winner already announced for this category")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrPoolYearMismatch = errors.New("pools cover different award years")
	ErrSettingsFrozen   = errors.New("pool settings are frozen once a winner is announced")
	ErrInvalidID        = errors.New("invalid ID format")
)
