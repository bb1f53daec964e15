package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-tailor-go/internal/agent"
	"cv-tailor-go/internal/types"
)

func TestCVExtractor_Extract(t *testing.T) {
	mock := agent.NewMockChatClient("```json\n"+prettyExtracted+"\n```", nil)
	extractor := NewCVExtractor(WithTemperature(0.2), WithMaxOutputTokens(4096))

	cv, err := extractor.Extract(context.Background(), mock, "Jane Doe ...")
	require.NoError(t, err)

	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "Jane Doe", cv.Name)
	assert.Equal(t, "Remote", cv.ContactInfo.Location)
	assert.Equal(t, []string{"Go", "Kubernetes", "PostgreSQL"}, cv.Skills)
	assert.Empty(t, cv.Projects)

	opts := mock.ReceivedOptions[0]
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.2, *opts.Temperature, 0.0001)
	require.NotNil(t, opts.MaxTokens)
	assert.Equal(t, 4096, *opts.MaxTokens)
}

func TestCVExtractor_SchemaViolationIsNotRetried(t *testing.T) {
	mock := agent.NewMockChatClientSequential(
		agent.MockResponse{Content: "I could not find a CV in this text."},
		agent.MockResponse{Content: minifiedExtracted},
	)

	_, err := NewCVExtractor().Extract(context.Background(), mock, "noise")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSchemaViolation)
	assert.Equal(t, 1, mock.CallCount())
}

func TestCVExtractor_CollaboratorFailure(t *testing.T) {
	mock := agent.NewMockChatClient("", errors.New("429 Too Many Requests"))

	_, err := NewCVExtractor().Extract(context.Background(), mock, "Jane")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCollaborator)
	assert.Equal(t, types.StageExtract, types.StageOf(err))
}

func TestCVExtractor_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := agent.NewMockChatClient(minifiedExtracted, nil)

	_, err := NewCVExtractor(WithCallTimeout(time.Second)).Extract(ctx, mock, "Jane")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, types.ErrCollaborator)
}
