package voice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Recognizer is the platform speech-recognition API: a continuous es-ES
// session with interim results. Start may be called once per recognizer.
type Recognizer interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

// Processor handles one final transcript, typically by running the voice
// matcher and recording or escalating to the assistant.
type Processor interface {
	ProcessTranscript(ctx context.Context, transcript string) error
}

// ErrAlreadyStarted is returned when Start is called on a running session.
var ErrAlreadyStarted = errors.New("voice: session already started")

// Session consumes recognizer events and hands final transcripts to the
// processor one at a time. While a transcript is being processed, new final
// transcripts are silently dropped, not queued. Stopping the session cancels
// future events only; processing already underway runs to completion.
type Session struct {
	rec       Recognizer
	processor Processor
	logger    *slog.Logger

	isProcessing atomic.Bool
	started      atomic.Bool
	stopped      atomic.Bool

	// interim holds the newest non-final transcript, for live display.
	mu      sync.Mutex
	interim string

	inflight sync.WaitGroup
	done     chan struct{}

	// OnError receives recognizer errors mapped to user-facing text.
	// Optional.
	OnError func(code ErrorCode, message string)
}

// NewSession creates a voice session. It does nothing until Start.
func NewSession(rec Recognizer, processor Processor, logger *slog.Logger) *Session {
	return &Session{
		rec:       rec,
		processor: processor,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins consuming recognizer events. It returns once the recognizer
// is running; event handling continues in the background until the
// recognizer ends or Stop is called.
func (s *Session) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	events, err := s.rec.Start(ctx)
	if err != nil {
		return err
	}

	go s.consume(ctx, events)
	return nil
}

func (s *Session) consume(ctx context.Context, events <-chan Event) {
	defer func() {
		s.inflight.Wait()
		close(s.done)
	}()

	for ev := range events {
		if s.stopped.Load() {
			continue
		}

		switch ev.Kind {
		case EventStarted:
			s.logger.Debug("voice capture started")
		case EventResult:
			s.handleResult(ctx, ev)
		case EventError:
			s.logger.Warn("voice recognition error", "code", ev.Code)
			if s.OnError != nil {
				s.OnError(ev.Code, ev.Code.UserMessage())
			}
		case EventEnded:
			s.logger.Debug("voice capture ended")
		}
	}
}

func (s *Session) handleResult(ctx context.Context, ev Event) {
	if !ev.Final {
		s.mu.Lock()
		s.interim = ev.Transcript
		s.mu.Unlock()
		return
	}

	// Overlapping finals are dropped while one is in flight.
	if !s.isProcessing.CompareAndSwap(false, true) {
		s.logger.Debug("final transcript dropped, processing in progress", "transcript", ev.Transcript)
		return
	}

	s.mu.Lock()
	s.interim = ""
	s.mu.Unlock()

	// Processing runs off the event loop so interim results keep flowing.
	// Stopping the session does not cancel it; an in-flight transcript runs
	// to completion.
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer s.isProcessing.Store(false)
		if err := s.processor.ProcessTranscript(ctx, ev.Transcript); err != nil {
			s.logger.Error("transcript processing failed", "error", err)
		}
	}()
}

// Interim returns the newest non-final transcript.
func (s *Session) Interim() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interim
}

// Stop ends the capture. Events still in the channel are discarded; a
// transcript already being processed finishes normally.
func (s *Session) Stop() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	return s.rec.Stop()
}

// Wait blocks until the event loop has drained, which happens after the
// recognizer closes its event channel.
func (s *Session) Wait() {
	<-s.done
}
