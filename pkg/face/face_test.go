package face

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"unit apart", []float64{0, 0}, []float64{1, 0}, 1},
		{"pythagorean", []float64{0, 0}, []float64{3, 4}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestDistanceDegenerateInputs(t *testing.T) {
	assert.Equal(t, math.MaxFloat64, Distance(nil, []float64{1}))
	assert.Equal(t, math.MaxFloat64, Distance([]float64{1}, nil))
	assert.Equal(t, math.MaxFloat64, Distance([]float64{1, 2}, []float64{1}))
}

var testUpgrader = websocket.Upgrader{}

// newEngineServer runs an in-process engine endpoint that answers every
// request with one face whose encoding is the decoded frame's length.
func newEngineServer(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req engineRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				return
			}
			frame, err := base64.StdEncoding.DecodeString(req.Image)
			if err != nil {
				return
			}

			payload, err := json.Marshal(engineResult{
				Boxes:     [][]float64{{0, 0, 100, 100}},
				Encodings: [][]float64{{float64(len(frame))}},
			})
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestClient() *faceClient {
	return &faceClient{
		pingInterval: 20 * time.Millisecond,
		readTimeout:  2 * time.Second,
		writeTimeout: 2 * time.Second,
	}
}

func TestAnalyzeFacesRoundTrip(t *testing.T) {
	t.Setenv("FACE_ENGINE_URL", newEngineServer(t))
	client := newTestClient()
	defer client.Close()

	analysis, err := client.AnalyzeFaces([]byte("12345"))
	require.NoError(t, err)
	require.True(t, analysis.HasFace())
	assert.Equal(t, []float64{5}, analysis.PrimaryEncoding())
	assert.Len(t, analysis.Boxes, 1)
}

func TestAnalyzeFacesConcurrentCallsGetOwnResults(t *testing.T) {
	t.Setenv("FACE_ENGINE_URL", newEngineServer(t))
	client := newTestClient()
	defer client.Close()

	// The connection is shared across requests; every caller must get back
	// the embedding for its own frame, never a concurrent caller's.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			frame := []byte(strings.Repeat("x", 10+i))
			for j := 0; j < 25; j++ {
				analysis, err := client.AnalyzeFaces(frame)
				if !assert.NoError(t, err) {
					return
				}
				if !assert.Equal(t, []float64{float64(len(frame))}, analysis.PrimaryEncoding()) {
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
