// Package events defines the messages exchanged between edge devices and the
// ingest consumer, plus the Kafka plumbing shared by publishers.
package events

import "time"

// TopicVisits is the topic edge devices publish visit events to.
const TopicVisits = "litterbox_usage_events"

// TypeVisitRecorded is the event_type header value for visit events.
const TypeVisitRecorded = "litterbox.visit_recorded"

// VisitRecorded is emitted by an edge device when a cat leaves the litterbox.
// Weights are in pounds; enter/exit weights are total box weight, so the
// cat's weight is the difference between them.
type VisitRecorded struct {
	EventID     string    `json:"id"`
	DeviceID    string    `json:"litterbox_edge_device_id"`
	EnterTime   time.Time `json:"enter_time"`
	ExitTime    time.Time `json:"exit_time"`
	WeightEnter float64   `json:"weight_enter"`
	WeightExit  float64   `json:"weight_exit"`
}

// VisitRecordedSchema is the JSON Schema registered for VisitRecorded.
const VisitRecordedSchema = `{
  "type": "object",
  "title": "VisitRecorded",
  "properties": {
    "id": {"type": "string"},
    "litterbox_edge_device_id": {"type": "string"},
    "enter_time": {"type": "string", "format": "date-time"},
    "exit_time": {"type": "string", "format": "date-time"},
    "weight_enter": {"type": "number"},
    "weight_exit": {"type": "number"}
  },
  "required": ["id", "litterbox_edge_device_id", "enter_time", "exit_time", "weight_enter", "weight_exit"],
  "additionalProperties": false
}`
