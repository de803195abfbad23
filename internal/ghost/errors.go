package ghost

import "errors"

// Generation errors
var (
	ErrQuotaExceeded   = errors.New("provider quota exceeded")
	ErrMissingKey      = errors.New("missing api key")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrUnknownPersona  = errors.New("unknown persona")
	ErrPromptTooLong   = errors.New("prompt too long")
	ErrPersonaTooLong  = errors.New("custom persona too long")
	ErrEmptyPrompt     = errors.New("empty prompt")
	ErrEmptyCompletion = errors.New("provider returned no text")
)

// UserMessage turns a generation error into text a player can act on
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return "Quota exceeded. Check your API credits or try another provider."
	case errors.Is(err, ErrMissingKey):
		return "No API key configured for this provider."
	case errors.Is(err, ErrUnknownPersona):
		return "Unknown persona."
	case errors.Is(err, ErrPromptTooLong):
		return "Prompt too long (max 500 chars)."
	case errors.Is(err, ErrPersonaTooLong):
		return "Custom persona too long (max 100 chars)."
	default:
		return "AI error: could not generate. Try again or write it yourself."
	}
}
