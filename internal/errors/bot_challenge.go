package errors

import "errors"

// BotChallengeError means the site answered with a captcha or robot check
// instead of the requested page.
type BotChallengeError struct {
	URL string
}

func (e *BotChallengeError) Error() string {
	return "bot challenge served for " + e.URL
}

// NewBotChallengeError creates a BotChallengeError for the given URL.
func NewBotChallengeError(url string) *BotChallengeError {
	return &BotChallengeError{URL: url}
}

// IsBotChallengeError reports whether err is a BotChallengeError (even when wrapped).
func IsBotChallengeError(err error) bool {
	var botErr *BotChallengeError
	return errors.As(err, &botErr)
}
