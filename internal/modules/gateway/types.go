package gateway

import "encoding/json"

// Envelope is the wire shape of every gateway event.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// inboundEnvelope is what clients send; Data stays raw until an event
// handler needs it.
type inboundEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// encodeEnvelope serializes an event into a text frame. A payload that
// fails to marshal degrades to a valid empty text frame instead of
// erroring out mid-dispatch.
func encodeEnvelope(event string, data interface{}) []byte {
	raw, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		return emptyTextFrame()
	}
	return EncodeFrame(OpText, raw)
}

// relayMessage is the cross-instance mirror of a broadcast, carried over
// Redis pub/sub. Origin filters out the publisher's own copy.
type relayMessage struct {
	Origin    string      `json:"origin"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	ExcludeID string      `json:"exclude_id,omitempty"`
}

// Well-known event names.
const (
	EventConnected       = "connected"
	EventPresenceOffline = "presence.offline"
	EventMessageNew      = "message.new"
	EventPostNew         = "post.new"
	EventGiftReceived    = "gift.received"
)
