package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_ParsesVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "화재 발생", req.Text)

		json.NewEncoder(w).Encode(Result{DisasterType: "화재", Safety: VerdictDanger, Confidence: 0.93})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	result := c.Analyze(context.Background(), "화재 발생")

	assert.Equal(t, "화재", result.DisasterType)
	assert.Equal(t, VerdictDanger, result.Safety)
	assert.InDelta(t, 0.93, result.Confidence, 1e-9)
}

func TestAnalyze_UnreachableServerFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, time.Second)
	result := c.Analyze(context.Background(), "anything")

	assert.Equal(t, Fallback(), result)
}

func TestAnalyze_Non200FallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	assert.Equal(t, Fallback(), c.Analyze(context.Background(), "anything"))
}

func TestAnalyze_BadJSONFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	assert.Equal(t, Fallback(), c.Analyze(context.Background(), "anything"))
}

func TestFallback_FixedTuple(t *testing.T) {
	fb := Fallback()
	assert.Equal(t, CategoryUnknown, fb.DisasterType)
	assert.Equal(t, VerdictSafe, fb.Safety)
	assert.Zero(t, fb.Confidence)
}

func TestIsCritical(t *testing.T) {
	verdict := VerdictSafe
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{DisasterType: "호우", Safety: verdict, Confidence: 0.7})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	assert.False(t, c.IsCritical(context.Background(), "비 옴"))

	verdict = VerdictDanger
	assert.True(t, c.IsCritical(context.Background(), "홍수"))
}
