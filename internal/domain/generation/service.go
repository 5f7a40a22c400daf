package generation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/shared/utils"
)

// DefaultTimeout bounds a generation call when none is configured
const DefaultTimeout = 60 * time.Second

// Recorder receives generation outcomes
type Recorder interface {
	RecordGeneration(backend, outcome string, duration time.Duration)
}

// Config configures a Service
type Config struct {
	Timeout      time.Duration
	ParseOptions blueprint.ParseOptions
	Recorder     Recorder
}

// Service validates prompts, calls the backend and runs its output through
// the same parse-and-validate path as hand-written blueprint text.
type Service struct {
	backend Backend
	logger  *zap.Logger
	cfg     Config
}

// NewService creates a generation service
func NewService(backend Backend, logger *zap.Logger, cfg Config) *Service {
	if backend == nil {
		backend = Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{
		backend: backend,
		logger:  logger.Named("generation"),
		cfg:     cfg,
	}
}

// Backend returns the name of the configured backend
func (s *Service) Backend() string {
	return s.backend.Name()
}

// Generate produces a validated blueprint for prompt. Every failure is a
// *GenerationError; an empty prompt fails without calling the backend.
func (s *Service) Generate(ctx context.Context, prompt string) (*blueprint.Element, error) {
	if err := utils.ValidatePrompt(prompt); err != nil {
		reason, msg := ReasonInvalidPrompt, err.Error()
		if strings.TrimSpace(prompt) == "" {
			reason, msg = ReasonEmptyPrompt, MessageEmptyPrompt
		}
		return nil, &GenerationError{Reason: reason, Message: msg, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.backend.Generate(ctx, prompt)
	if err != nil {
		ge := s.classify(ctx, err)
		s.record(ge.Reason, start)
		s.logger.Warn("Generation failed",
			zap.String("backend", s.backend.Name()),
			zap.String("reason", string(ge.Reason)),
			zap.Error(err))
		return nil, ge
	}

	root, err := blueprint.ParseWithOptions(extractJSON(raw), s.cfg.ParseOptions)
	if err != nil {
		s.record(ReasonInvalidOutput, start)
		s.logger.Warn("Generated blueprint rejected",
			zap.String("backend", s.backend.Name()),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return nil, &GenerationError{Reason: ReasonInvalidOutput, Message: MessageFailed, Err: err}
	}

	s.record("ok", start)
	s.logger.Info("Blueprint generated",
		zap.String("backend", s.backend.Name()),
		zap.Duration("duration", time.Since(start)),
		zap.Stringer("stats", blueprint.Measure(root)))
	return root, nil
}

func (s *Service) classify(ctx context.Context, err error) *GenerationError {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return &GenerationError{Reason: ReasonUnavailable, Message: MessageNotConfigured, Err: err}
	case errors.Is(err, ErrUnavailable):
		return &GenerationError{Reason: ReasonUnavailable, Message: MessageUnavailable, Err: err}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &GenerationError{Reason: ReasonTimeout, Message: MessageFailed, Err: err}
	default:
		return &GenerationError{Reason: ReasonUpstream, Message: MessageFailed, Err: err}
	}
}

func (s *Service) record(outcome Reason, start time.Time) {
	if s.cfg.Recorder != nil {
		s.cfg.Recorder.RecordGeneration(s.backend.Name(), string(outcome), time.Since(start))
	}
}

// extractJSON strips a Markdown code fence some models wrap around JSON
func extractJSON(raw []byte) []byte {
	text := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(text, []byte("```")) {
		return text
	}
	text = text[3:]
	if nl := bytes.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = bytes.TrimSuffix(bytes.TrimSpace(text), []byte("```"))
	return bytes.TrimSpace(text)
}
