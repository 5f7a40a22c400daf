package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
)

type stubBackend struct {
	mu     sync.Mutex
	calls  int
	output string
	err    error
	block  bool
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Generate(ctx context.Context, prompt string) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []byte(s.output), s.err
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) RecordGeneration(backend, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, backend+":"+outcome)
}

func TestGenerateEmptyPromptSkipsBackend(t *testing.T) {
	for _, prompt := range []string{"", "   \n\t"} {
		backend := &stubBackend{output: `{"type":"div"}`}
		svc := NewService(backend, zap.NewNop(), Config{})

		_, err := svc.Generate(context.Background(), prompt)

		var ge *GenerationError
		require.True(t, errors.As(err, &ge))
		assert.Equal(t, ReasonEmptyPrompt, ge.Reason)
		assert.Equal(t, MessageEmptyPrompt, ge.Message)
		assert.Zero(t, backend.calls)
	}
}

func TestGenerateOversizedPrompt(t *testing.T) {
	backend := &stubBackend{output: `{"type":"div"}`}
	svc := NewService(backend, zap.NewNop(), Config{})

	_, err := svc.Generate(context.Background(), strings.Repeat("a", 17*1024))

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, ReasonInvalidPrompt, ge.Reason)
	assert.Zero(t, backend.calls)
}

func TestGenerateSuccess(t *testing.T) {
	rec := &outcomeRecorder{}
	backend := &stubBackend{output: `{"type":"div","props":{"className":"bg-gray-900"},"children":[{"type":"h1","children":["Jane Doe"]}]}`}
	svc := NewService(backend, zap.NewNop(), Config{Recorder: rec})

	root, err := svc.Generate(context.Background(), "a portfolio for Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "div", root.Tag)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, []string{"stub:ok"}, rec.outcomes)
}

func TestGenerateStripsCodeFence(t *testing.T) {
	backend := &stubBackend{output: "```json\n{\"type\":\"main\"}\n```"}
	svc := NewService(backend, zap.NewNop(), Config{})

	root, err := svc.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "main", root.Tag)
}

func TestGenerateInvalidOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"not json", "Sure! Here is your site."},
		{"missing type", `{"props":{}}`},
		{"numeric type", `{"type":5}`},
		{"array root", `[{"type":"div"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&stubBackend{output: tt.output}, zap.NewNop(), Config{})

			_, err := svc.Generate(context.Background(), "a site")

			var ge *GenerationError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, ReasonInvalidOutput, ge.Reason)
			assert.Equal(t, MessageFailed, ge.Message)
			assert.True(t, blueprint.IsValidationError(err))
			assert.True(t, ge.Retryable())
		})
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	boom := errors.New("401 unauthorized")
	svc := NewService(&stubBackend{err: boom}, zap.NewNop(), Config{})

	_, err := svc.Generate(context.Background(), "a site")

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, ReasonUpstream, ge.Reason)
	assert.ErrorIs(t, err, boom)
}

func TestGenerateDisabled(t *testing.T) {
	svc := NewService(nil, zap.NewNop(), Config{})
	assert.Equal(t, "disabled", svc.Backend())

	_, err := svc.Generate(context.Background(), "a site")

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, ReasonUnavailable, ge.Reason)
	assert.Equal(t, MessageNotConfigured, ge.Message)
	assert.False(t, ge.Retryable())
}

func TestGenerateBackendUnavailable(t *testing.T) {
	svc := NewService(&stubBackend{err: fmt.Errorf("%w: circuit open", ErrUnavailable)}, zap.NewNop(), Config{})

	_, err := svc.Generate(context.Background(), "a site")

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, ReasonUnavailable, ge.Reason)
	assert.Equal(t, MessageUnavailable, ge.Message)
	assert.True(t, ge.Retryable())
}

func TestGenerateTimeout(t *testing.T) {
	svc := NewService(&stubBackend{block: true}, zap.NewNop(), Config{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := svc.Generate(context.Background(), "a site")

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, ReasonTimeout, ge.Reason)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(extractJSON([]byte(`  {"a":1}  `))))
	assert.Equal(t, `{"a":1}`, string(extractJSON([]byte("```\n{\"a\":1}\n```"))))
}
