package events

import (
	"encoding/binary"
	"fmt"
)

// EncodeWireFormat applies Confluent framing for Schema Registry aware
// payloads: a zero magic byte followed by the big-endian schema ID.
func EncodeWireFormat(schemaID int, payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	frame[0] = 0
	binary.BigEndian.PutUint32(frame[1:5], uint32(schemaID))
	copy(frame[5:], payload)
	return frame
}

// DecodeWireFormat strips Confluent framing and returns the schema ID and
// raw payload.
func DecodeWireFormat(value []byte) (int, []byte, error) {
	if len(value) < 5 {
		return 0, nil, fmt.Errorf("invalid payload length: %d", len(value))
	}
	if value[0] != 0 {
		return 0, nil, fmt.Errorf("unexpected magic byte: %d", value[0])
	}
	schemaID := int(binary.BigEndian.Uint32(value[1:5]))
	payload := append([]byte(nil), value[5:]...)
	return schemaID, payload, nil
}
