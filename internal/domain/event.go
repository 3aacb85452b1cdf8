package domain

import (
	"encoding/json"
	"fmt"
)

// EventKind classifies an inbound Viber webhook event.
type EventKind string

const (
	EventText                EventKind = "text"
	EventConversationStarted EventKind = "conversation_started"
	EventDeliveryStatus      EventKind = "delivery_status"
	EventUnknown             EventKind = "unknown"
)

// InboundEvent is one parsed webhook delivery. It is constructed once per
// request, never mutated, and discarded after dispatch.
type InboundEvent struct {
	Kind        EventKind
	SenderID    string
	DisplayName string // only for conversation_started
	Text        string // only for text messages
	RawEvent    string // vendor event name as received
}

// envelope mirrors the Viber webhook POST body. Only the fields the bot acts
// on are decoded; everything else is ignored.
type envelope struct {
	Event  string `json:"event"`
	Sender *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"sender"`
	User *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Message *struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

// deliveryEvents are acknowledged without any routing.
var deliveryEvents = map[string]bool{
	"delivered":    true,
	"seen":         true,
	"failed":       true,
	"subscribed":   true,
	"unsubscribed": true,
	"webhook":      true,
}

// ParseEvent decodes a raw webhook body into an InboundEvent. A body that is
// not valid JSON is a MalformedPayload error; a valid body with an
// unrecognized event name parses to EventUnknown (callers log and ignore it).
func ParseEvent(body []byte) (InboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return InboundEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	ev := InboundEvent{Kind: EventUnknown, RawEvent: env.Event}

	switch {
	case env.Event == "message" && env.Message != nil && env.Message.Type == "text":
		if env.Sender == nil || env.Sender.ID == "" {
			return InboundEvent{}, fmt.Errorf("%w: message event without sender id", ErrMalformedPayload)
		}
		ev.Kind = EventText
		ev.SenderID = env.Sender.ID
		ev.Text = env.Message.Text

	case env.Event == "conversation_started":
		if env.User == nil || env.User.ID == "" {
			return InboundEvent{}, fmt.Errorf("%w: conversation_started without user id", ErrMalformedPayload)
		}
		ev.Kind = EventConversationStarted
		ev.SenderID = env.User.ID
		ev.DisplayName = env.User.Name

	case deliveryEvents[env.Event]:
		ev.Kind = EventDeliveryStatus
		if env.User != nil {
			ev.SenderID = env.User.ID
		}
	}

	return ev, nil
}
