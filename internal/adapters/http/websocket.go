package http

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action   string `json:"action"`   // "subscribe" | "unsubscribe"
	Traveler string `json:"traveler"` // traveler ID filter (optional, "" = all)
	Channel  string `json:"channel"`  // "alerts" | "status" | "locations" (default: alerts)
}

// WebSocketHandler returns a handler that upgrades to WebSocket
// and relays real-time NATS safety events to connected clients.
// Clients send JSON: {"action":"subscribe","traveler":"t-1","channel":"alerts"}
// An empty traveler means all travelers. Default channel is "alerts".
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		log.Printf("ws client connected: %s", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// A dashboard wants every alert the moment it lands, so that is the
		// default subscription.
		defaultSubject := "safety.alerts.>"
		sub, err := nc.Subscribe(defaultSubject, func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			log.Printf("ws default subscribe error: %v", err)
			return
		}
		subs[defaultSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for subscribe/unsubscribe
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			channel := m.Channel
			if channel == "" {
				channel = "alerts"
			}

			var prefix string
			switch channel {
			case "alerts":
				prefix = "safety.alerts."
			case "status":
				prefix = "safety.status."
			case "locations":
				prefix = "safety.location."
			default:
				_ = writeJSON(map[string]string{"error": "unknown channel: " + channel})
				continue
			}

			subject := prefix + ">"
			if m.Traveler != "" {
				subject = prefix + m.Traveler
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Printf("ws client disconnected: %s", remoteAddr)
	}
}
