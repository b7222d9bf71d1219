package pitch

import "errors"

// Profile resolution errors. StartPitch returns them wrapped; test with errors.Is.
var (
	ErrUnknownProfile = errors.New("unknown pitch profile")
	ErrMissingData    = errors.New("pitch data is missing a required field")
	ErrInvalidData    = errors.New("pitch data is invalid")
)
