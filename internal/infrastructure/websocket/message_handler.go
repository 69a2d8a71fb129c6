package websocket

import (
	"encoding/json"
	"fmt"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func Encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// HandlerFunc processes one inbound event for a client.
type HandlerFunc func(client *Client, data json.RawMessage)

// Router maps inbound event names to handlers.
type Router struct {
	handlers  map[string]HandlerFunc
	fallback  HandlerFunc
	malformed HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

func (r *Router) Handle(event string, handler HandlerFunc) {
	r.handlers[event] = handler
}

// NotFound sets the handler used for unknown events. It receives the raw
// frame.
func (r *Router) NotFound(handler HandlerFunc) {
	r.fallback = handler
}

// Malformed sets the handler for frames that are not a valid envelope.
func (r *Router) Malformed(handler HandlerFunc) {
	r.malformed = handler
}

// Dispatch decodes one frame and runs its handler.
func (r *Router) Dispatch(client *Client, frame []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil || envelope.Event == "" {
		if r.malformed != nil {
			r.malformed(client, frame)
		}
		return
	}

	if handler, ok := r.handlers[envelope.Event]; ok {
		handler(client, envelope.Data)
		return
	}
	if r.fallback != nil {
		r.fallback(client, frame)
	}
}
