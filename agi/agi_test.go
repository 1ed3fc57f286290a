package agi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvents() []EventProjection {
	return []EventProjection{
		{EventID: "e1", AttendeeCount: 10, UpdatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
}

// The endpoint and key come from the environment at call time, so
// values loaded into the process after package init (main loads .env
// late) still take effect.
func TestGeneratorReadsEnvAtCallTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"pros\":[\"p1\",\"p2\",\"p3\"],\"cons\":[\"c1\",\"c2\",\"c3\"]}"}}]}`))
	}))
	defer server.Close()

	t.Setenv("AGI_API_URL", server.URL)
	t.Setenv("AGI_API_KEY", "secret-key")

	insights, err := NewClient().GenerateInsights(testEvents())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, insights.Pros)
	assert.Equal(t, []string{"c1", "c2", "c3"}, insights.Cons)
}

func TestGeneratorFailsWithoutEndpoint(t *testing.T) {
	t.Setenv("AGI_API_URL", "")

	_, err := NewClient().GenerateInsights(testEvents())
	assert.Error(t, err)
}

func TestInsightsExtractedFromProseWrappedAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Here you go:\n{\"pros\":[\"p1\",\"p2\",\"p3\"],\"cons\":[\"c1\",\"c2\",\"c3\"]}\nHope that helps."}}]}`))
	}))
	defer server.Close()

	t.Setenv("AGI_API_URL", server.URL)

	insights, err := NewClient().GenerateInsights(testEvents())
	require.NoError(t, err)
	assert.Len(t, insights.Pros, 3)
}

func TestShortInsightListRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"pros\":[\"p1\"],\"cons\":[\"c1\"]}"}}]}`))
	}))
	defer server.Close()

	t.Setenv("AGI_API_URL", server.URL)

	_, err := NewClient().GenerateInsights(testEvents())
	assert.Error(t, err)
}
