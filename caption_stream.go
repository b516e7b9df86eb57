package gtuber

// CaptionStream extends Stream with a BCP-47-ish language code.
type CaptionStream struct {
	Stream

	// LangCode is a BCP-47-ish language identifier, e.g. "en", "pt-BR".
	LangCode string
}
