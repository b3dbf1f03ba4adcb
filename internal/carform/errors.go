package carform

import (
	"errors"
	"strings"
)

var (
	ErrThumbnailRequired = errors.New("please upload a thumbnail")
	ErrGalleryFull       = errors.New("maximum 10 images allowed")
	ErrDropLocked        = errors.New("drop locations mirror pickup locations")
	ErrIndexOutOfRange   = errors.New("location index out of range")
	ErrImageNotFound     = errors.New("image not found")
	ErrSubmitting        = errors.New("submission already in progress")
	ErrFormDone          = errors.New("form already submitted")
)

// ValidationError lists what blocks a submission. It is detected locally and
// never reaches the network.
type ValidationError struct {
	Thumbnail bool
	Missing   []string
	Invalid   []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Thumbnail {
		parts = append(parts, ErrThumbnailRequired.Error())
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is match ErrThumbnailRequired.
func (e *ValidationError) Is(target error) bool {
	return target == ErrThumbnailRequired && e.Thumbnail
}

func (e *ValidationError) empty() bool {
	return !e.Thumbnail && len(e.Missing) == 0 && len(e.Invalid) == 0
}
