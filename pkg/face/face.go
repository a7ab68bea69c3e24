package face

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"ProjectKYC/internal/entity"
	"github.com/gorilla/websocket"
)

// IFaceEngine is the face engine contract. DetectFaces returns bounding boxes
// only; AnalyzeFaces also returns one embedding per detected face. The engine
// is opaque; distance comparison happens on this side.
type IFaceEngine interface {
	DetectFaces(frame []byte) ([]entity.FaceBox, error)
	AnalyzeFaces(frame []byte) (*entity.FaceAnalysis, error)
	IsConnected() bool
	Reconnect() error
	Close()
}

const (
	opDetect = "detect"
	opEncode = "encode"
)

type engineRequest struct {
	Op    string `json:"op"`
	Image string `json:"image"`
}

type engineResult struct {
	Boxes     [][]float64 `json:"boxes"`
	Encodings [][]float64 `json:"encodings,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Distance is the Euclidean distance between two face embeddings, the metric
// the engine's embeddings are trained for. Lower means more similar.
func Distance(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return math.MaxFloat64
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

type faceClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewClient() IFaceEngine {
	client := &faceClient{
		pingInterval: 30 * time.Second,
		readTimeout:  20 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go func() {
		if err := client.Reconnect(); err != nil {
			log.Printf("Initial connection to face engine failed: %v. Will retry on demand.", err)
		} else {
			log.Printf("Successfully connected to face engine")
		}
	}()

	return client
}

func engineURL() string {
	url := os.Getenv("FACE_ENGINE_URL")
	if url == "" {
		url = "ws://localhost:8000/api/v1/face/ws"
	}
	return url
}

func (c *faceClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *faceClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnectLocked()
}

// reconnectLocked replaces the connection; the caller holds c.mu.
func (c *faceClient) reconnectLocked() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	url := engineURL()

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Printf("Error sending pong to face engine: %v", err)
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *faceClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// keepAlive pings one specific connection and exits as soon as that
// connection is no longer the client's current one, so reconnects never
// accumulate ping loops.
func (c *faceClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(
			websocket.PingMessage,
			[]byte{},
			time.Now().Add(c.writeTimeout),
		)

		if err != nil {
			log.Printf("Ping failed for face engine, marking connection as dead: %v", err)
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

// roundTrip sends one operation and waits for its result. The lock is held
// across the whole round trip: the connection is shared by every in-flight
// request and the engine answers in order, so a read outside the lock could
// hand one request another request's result.
func (c *faceClient) roundTrip(op string, frame []byte) (*engineResult, error) {
	payload, err := json.Marshal(engineRequest{
		Op:    op,
		Image: base64.StdEncoding.EncodeToString(frame),
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.reconnectLocked(); err != nil {
			return nil, fmt.Errorf("cannot connect to face engine: %w", err)
		}
	}
	conn := c.conn

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error sending frame to face engine: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error reading face engine response: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var result engineResult
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling face engine response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("face engine error: %s", result.Error)
	}

	return &result, nil
}

func toBoxes(raw [][]float64) []entity.FaceBox {
	boxes := make([]entity.FaceBox, 0, len(raw))
	for _, b := range raw {
		if len(b) != 4 {
			continue
		}
		boxes = append(boxes, entity.FaceBox{X1: b[0], Y1: b[1], X2: b[2], Y2: b[3]})
	}
	return boxes
}

func (c *faceClient) DetectFaces(frame []byte) ([]entity.FaceBox, error) {
	result, err := c.roundTrip(opDetect, frame)
	if err != nil {
		return nil, err
	}
	return toBoxes(result.Boxes), nil
}

func (c *faceClient) AnalyzeFaces(frame []byte) (*entity.FaceAnalysis, error) {
	result, err := c.roundTrip(opEncode, frame)
	if err != nil {
		return nil, err
	}

	return &entity.FaceAnalysis{
		Boxes:     toBoxes(result.Boxes),
		Encodings: result.Encodings,
	}, nil
}
