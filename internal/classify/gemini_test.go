package classify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsavvy/cardsavvy/internal/gemini"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

func newStubModel(t *testing.T, handler http.HandlerFunc) *gemini.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := gemini.New("test-key", "test-model")
	client.SetBaseURL(srv.URL)
	return client
}

func modelReply(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestGeminiClassifyParsesVerdict(t *testing.T) {
	client := newStubModel(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, modelReply(`{"category": "dining", "confidence": 0.92}`))
	})

	verdict, err := NewGemini(client).Classify(context.Background(), "Swiggy")
	require.NoError(t, err)
	assert.Equal(t, rewards.CategoryDining, verdict.Category)
	assert.Equal(t, 0.92, verdict.Confidence)
}

func TestGeminiClassifyToleratesProseWrapping(t *testing.T) {
	client := newStubModel(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, modelReply("Here you go:\n```json\n{\"category\": \"travel\", \"confidence\": 0.8}\n```"))
	})

	verdict, err := NewGemini(client).Classify(context.Background(), "IndiGo")
	require.NoError(t, err)
	assert.Equal(t, rewards.CategoryTravel, verdict.Category)
}

func TestGeminiClassifyUnknownCategoryFallsBackToOthers(t *testing.T) {
	client := newStubModel(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, modelReply(`{"category": "gambling", "confidence": 4.2}`))
	})

	verdict, err := NewGemini(client).Classify(context.Background(), "Unknown Corp")
	require.NoError(t, err)
	assert.Equal(t, rewards.CategoryOthers, verdict.Category)
	assert.Equal(t, 1.0, verdict.Confidence) // clamped
}

func TestGeminiClassifyUpstreamFailure(t *testing.T) {
	client := newStubModel(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := NewGemini(client).Classify(context.Background(), "Swiggy")
	assert.ErrorIs(t, err, ErrUnavailable)
}
