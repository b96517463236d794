package apperrors

import (
	"errors"
)

var (
	ErrShutdown = errors.New("shutdown error")

	ErrTopicNotFound      = errors.New("topic does not exist")
	ErrTopicAlreadyExists = errors.New("topic already exists")

	ErrSubscriberNotFound      = errors.New("subscriber does not exist")
	ErrSubscriberAlreadyExists = errors.New("subscriber already exists")

	ErrContentNotFound    = errors.New("content does not exist")
	ErrContentAlreadySent = errors.New("content already sent")
	ErrContentNotDue      = errors.New("content is not due yet")
	ErrContentClaimed     = errors.New("content is being dispatched")

	ErrEmptyField = errors.New("field cannot be empty")

	ErrRateLimited = errors.New("rate limit exceeded")
)
