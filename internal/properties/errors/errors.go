package errors

import "errors"

var (
	ErrNotFound = errors.New("property not found")

	ErrInvalidID = errors.New("invalid property ID format")

	ErrUnsupportedImage = errors.New("unsupported image type")

	ErrImageTooLarge = errors.New("image exceeds the maximum size")
)
