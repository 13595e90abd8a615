// Package voice routes speech requests to one of a closed set of
// speech-capability providers. The selector holds no state: it validates
// the requested language against the chosen provider's supported set and
// forwards the call unchanged.
package voice

import "context"

// ProviderName identifies a speech provider. The set is closed; unknown
// names are rejected at parse time, not at dispatch time.
type ProviderName string

const (
	ProviderGoogle ProviderName = "google"
	ProviderOpenAI ProviderName = "openai"
)

// Language is a locale tag from the fixed supported set.
type Language string

const (
	LangZhTW Language = "zh-TW"
	LangEnUS Language = "en-US"
)

// ParseProvider validates a provider name from the wire.
func ParseProvider(name string) (ProviderName, error) {
	switch ProviderName(name) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	default:
		return "", ErrUnknownProvider
	}
}

// Provider is one speech-capability implementation.
type Provider interface {
	Transcribe(ctx context.Context, lang Language, audio []byte) (string, error)
	Synthesize(ctx context.Context, lang Language, text string) ([]byte, error)
	// Supports reports whether the provider can serve the given language.
	Supports(lang Language) bool
}

// Selector dispatches to the provider chosen by name.
type Selector struct {
	google Provider
	openai Provider
}

// NewSelector creates a selector over the two fixed providers.
func NewSelector(google, openai Provider) *Selector {
	return &Selector{google: google, openai: openai}
}

// Transcribe converts audio to text via the named provider.
func (s *Selector) Transcribe(ctx context.Context, name ProviderName, lang Language, audio []byte) (string, error) {
	p, err := s.resolve(name, lang)
	if err != nil {
		return "", err
	}
	return p.Transcribe(ctx, lang, audio)
}

// Synthesize converts text to audio via the named provider.
func (s *Selector) Synthesize(ctx context.Context, name ProviderName, lang Language, text string) ([]byte, error) {
	p, err := s.resolve(name, lang)
	if err != nil {
		return nil, err
	}
	return p.Synthesize(ctx, lang, text)
}

// resolve picks the provider and fails fast on an unsupported language,
// before any network round-trip.
func (s *Selector) resolve(name ProviderName, lang Language) (Provider, error) {
	var p Provider
	switch name {
	case ProviderGoogle:
		p = s.google
	case ProviderOpenAI:
		p = s.openai
	default:
		return nil, ErrUnknownProvider
	}
	if p == nil {
		return nil, ErrUnknownProvider
	}
	if !p.Supports(lang) {
		return nil, ErrUnsupportedLanguage
	}
	return p, nil
}
