package contract

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrGeneration = errors.New("text generation failed")
)
