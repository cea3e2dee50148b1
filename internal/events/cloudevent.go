package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

const cloudEventSource = "/webhook/receiver"

// EncodeCloudEvent wraps a normalized event in a structured-mode CloudEvent
// ready to be published on the bus. An empty deliveryID gets a fresh UUID.
func EncodeCloudEvent(e Event, deliveryID string) ([]byte, error) {
	if strings.TrimSpace(deliveryID) == "" {
		deliveryID = uuid.NewString()
	}

	ce := cloudevents.NewEvent()
	ce.SetID(deliveryID)
	ce.SetSource(cloudEventSource)
	ce.SetType("com.github." + strings.ToLower(string(e.Action)))
	ce.SetTime(time.Now().UTC())
	ce.SetSpecVersion(cloudevents.VersionV1)
	if err := ce.SetData(cloudevents.ApplicationJSON, e); err != nil {
		return nil, fmt.Errorf("set cloudevent data: %w", err)
	}
	return json.Marshal(ce)
}

// DecodeCloudEvent is the inverse of EncodeCloudEvent. It returns the
// CloudEvent id alongside the canonical event.
func DecodeCloudEvent(b []byte) (Event, string, error) {
	ce := cloudevents.NewEvent()
	if err := json.Unmarshal(b, &ce); err != nil {
		return Event{}, "", fmt.Errorf("decode cloudevent: %w", err)
	}
	var e Event
	if err := ce.DataAs(&e); err != nil {
		return Event{}, ce.ID(), fmt.Errorf("decode cloudevent data: %w", err)
	}
	return e, ce.ID(), nil
}
