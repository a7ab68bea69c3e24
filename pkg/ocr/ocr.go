package ocr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// IOCREngine is the text-recognizer contract: an image in, the recognized
// text fragments out in approximate reading order. The engine itself is
// opaque; this client only moves frames over its websocket.
type IOCREngine interface {
	RecognizeText(frame []byte) ([]string, error)
	IsConnected() bool
	Reconnect() error
	Close()
}

type recognizeResult struct {
	Fragments []string `json:"fragments"`
	Error     string   `json:"error,omitempty"`
}

type ocrClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewClient() IOCREngine {
	client := &ocrClient{
		pingInterval: 30 * time.Second,
		readTimeout:  20 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go func() {
		if err := client.Reconnect(); err != nil {
			log.Printf("Initial connection to OCR engine failed: %v. Will retry on demand.", err)
		} else {
			log.Printf("Successfully connected to OCR engine")
		}
	}()

	return client
}

func engineURL() string {
	url := os.Getenv("OCR_ENGINE_URL")
	if url == "" {
		url = "ws://localhost:8000/api/v1/ocr/ws"
	}
	return url
}

func (c *ocrClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *ocrClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnectLocked()
}

// reconnectLocked replaces the connection; the caller holds c.mu.
func (c *ocrClient) reconnectLocked() error {
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
			log.Printf("Error sending pong to OCR engine: %v", err)
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *ocrClient) Close() {
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
func (c *ocrClient) keepAlive(conn *websocket.Conn) {
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
			log.Printf("Ping failed for OCR engine, marking connection as dead: %v", err)
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

// RecognizeText sends one image frame and waits for the recognized fragments.
// The lock is held across the whole round trip: the connection is shared by
// every in-flight request and the engine answers in order, so a read outside
// the lock could hand one request another request's result.
func (c *ocrClient) RecognizeText(frame []byte) ([]string, error) {
	base64Frame := base64.StdEncoding.EncodeToString(frame)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.reconnectLocked(); err != nil {
			return nil, fmt.Errorf("cannot connect to OCR engine: %w", err)
		}
	}
	conn := c.conn

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(base64Frame)); err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error sending frame to OCR engine: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error reading OCR engine response: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var result recognizeResult
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling OCR response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("OCR engine error: %s", result.Error)
	}

	return result.Fragments, nil
}
