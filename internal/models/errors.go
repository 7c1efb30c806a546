package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMediaRead is returned when an uploaded file cannot be read
	ErrMediaRead = errors.New("media could not be read")
	// ErrMediaDecode is returned when a video has no usable duration or a frame cannot be captured
	ErrMediaDecode = errors.New("media could not be decoded")
	// ErrUnsupportedMedia is returned for files whose type is not accepted for the category
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrQRDecodeFailed means no QR symbol was found in the uploaded image
	ErrQRDecodeFailed = errors.New("could not decode a QR code from the uploaded image")
	// ErrModelTimeout is returned when the model call exceeds its deadline
	ErrModelTimeout = errors.New("model call timed out")
	// ErrStoreUnavailable marks history store failures
	ErrStoreUnavailable = errors.New("history store unavailable")
)

// ValidationError reports the first field that failed a submission precondition
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ModelContractError means the model answered with something that does not
// match the declared response schema
type ModelContractError struct {
	Template string
	Err      error
}

func (e *ModelContractError) Error() string {
	return fmt.Sprintf("model response for %s violates contract: %v", e.Template, e.Err)
}

func (e *ModelContractError) Unwrap() error {
	return e.Err
}

// ModelCallError means the outbound model call itself failed
type ModelCallError struct {
	Template string
	Err      error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("model call for %s failed: %v", e.Template, e.Err)
}

func (e *ModelCallError) Unwrap() error {
	return e.Err
}
