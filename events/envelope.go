package events

import "encoding/json"

// Envelope pairs a payload with the subject it routes to. Marshaling an
// Envelope marshals the payload directly — Meta is embedded in every
// concrete payload, so the wire JSON is flat, matching the per-subject
// shapes spec.md §6 lists rather than a generic wrapper object.
type Envelope struct {
	Subject string
	Payload Payload
}

// Wrap derives subject from payload via Subject and returns the Envelope.
func Wrap(payload Payload) Envelope {
	return Envelope{Subject: Subject(payload), Payload: payload}
}

// Marshal serialises the payload for publication.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e.Payload)
}
