// Package voice manages speech-capture sessions: it consumes recognizer
// events, guards against overlapping utterances and parses the strict-JSON
// answers the voice flow expects from the model.
package voice

// Locale is the recognition locale the app runs in.
const Locale = "es-ES"

// ErrorCode is a recognizer error category.
type ErrorCode string

const (
	ErrNoSpeech     ErrorCode = "no-speech"
	ErrAudioCapture ErrorCode = "audio-capture"
	ErrNotAllowed   ErrorCode = "not-allowed"
	ErrNetwork      ErrorCode = "network"
)

// UserMessage maps a recognizer error to its fixed user-facing text.
func (c ErrorCode) UserMessage() string {
	switch c {
	case ErrNoSpeech:
		return "No te he oído. Inténtalo de nuevo."
	case ErrAudioCapture:
		return "No he podido acceder al micrófono."
	case ErrNotAllowed:
		return "Permiso de micrófono denegado. Actívalo en los ajustes del navegador."
	case ErrNetwork:
		return "Error de red durante el reconocimiento de voz."
	default:
		return "Error de reconocimiento de voz."
	}
}

// EventKind discriminates recognizer events.
type EventKind int

const (
	EventStarted EventKind = iota
	EventResult
	EventError
	EventEnded
)

// Event is one recognizer callback. Result events carry the transcript and
// whether it is final; interim results arrive with Final false.
type Event struct {
	Kind       EventKind
	Transcript string
	Final      bool
	Code       ErrorCode
}
