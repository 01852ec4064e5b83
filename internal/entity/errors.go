package entity

import "errors"

var (
	ErrActiveClaimExists           = errors.New("client already has an unresolved claim")
	ErrClientRequiredFieldsMissing = errors.New("required fields missing")
	ErrInvalidTechnicianRoster     = errors.New("technician not in roster")
	ErrStoreUnavailable            = errors.New("store unavailable")
	ErrInvalidTransition           = errors.New("invalid status transition")
	ErrInvalidCellUpdate           = errors.New("invalid cell update")
	ErrInvalidArgument             = errors.New("invalid argument")
	ErrAlreadyExists               = errors.New("already exists")
	ErrNotFound                    = errors.New("not found")
	ErrSealNotPropagated           = errors.New("claim resolved but client seal not updated")
)
