package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrEmptyMessage  = errors.New("message has no content")
	ErrNotViewOnce   = errors.New("not a view-once message")
	ErrAlreadyViewed = errors.New("already viewed")
	ErrUpload        = errors.New("media upload failed")
	ErrMediaDelete   = errors.New("media deletion failed")
)
