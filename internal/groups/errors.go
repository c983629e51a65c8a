package groups

import "errors"

var (
	// ErrNotMember is returned when the user does not belong to the group.
	ErrNotMember = errors.New("user is not a member of this group")
	// ErrAlreadyMember is returned when joining a group twice.
	ErrAlreadyMember = errors.New("user is already a member of this group")
	// ErrNotCaptain is returned for captain-only operations.
	ErrNotCaptain = errors.New("only captains can perform this operation")
)
