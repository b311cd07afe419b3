package domain

import "errors"

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrChatIDRequired  = errors.New("chat_id is required")
	ErrInvalidChatID   = errors.New("invalid chat_id")
	ErrContentRequired = errors.New("content is required")
	ErrInvalidMode     = errors.New("invalid mode")
	ErrChatNotFound    = errors.New("chat not found")
	ErrNoChatSelected  = errors.New("no chat selected")
)

// MaxTitleLength bounds chat titles
const MaxTitleLength = 255

// IsValidation reports whether err is a caller input error
func IsValidation(err error) bool {
	return errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrTitleTooLong) ||
		errors.Is(err, ErrChatIDRequired) ||
		errors.Is(err, ErrInvalidChatID) ||
		errors.Is(err, ErrContentRequired) ||
		errors.Is(err, ErrInvalidMode)
}
