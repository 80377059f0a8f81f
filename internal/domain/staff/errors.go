package staff

import "errors"

var (
	ErrStaffNotFound = errors.New("staff not found")
	ErrStaffInactive = errors.New("staff is inactive")
)
