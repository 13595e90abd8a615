package voice

import "errors"

var (
	// ErrUnsupportedLanguage indicates the chosen provider does not serve
	// the requested language. Raised before any external call.
	ErrUnsupportedLanguage = errors.New("language not supported by provider")
	// ErrUnknownProvider indicates a provider name outside the fixed set.
	ErrUnknownProvider = errors.New("unknown speech provider")
)
