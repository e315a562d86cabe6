// Package server implements the TCP front door: newline-delimited JSON
// envelopes dispatched to agents and the document ingestor.
package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Message type discriminators on the wire.
const (
	TypeAgentRequest = "0"
	TypeDocumentSync = "1"
)

// Envelope is one request or response frame. Type selects the operation,
// ID names the target agent or document, and Data carries the payload.
// Session is optional on requests; when absent the connection's generated
// session id is used.
type Envelope struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Data    string `json:"data"`
	Session string `json:"session,omitempty"`
}

// Validate checks that the envelope names a known operation and a target.
func (e Envelope) Validate() error {
	switch e.Type {
	case TypeAgentRequest, TypeDocumentSync:
	default:
		return fmt.Errorf("unknown message type %q", e.Type)
	}
	if e.ID == "" {
		return fmt.Errorf("missing id")
	}
	return nil
}

// ReadEnvelope reads one newline-terminated frame and decodes it. Partial
// frames are buffered by the reader until the delimiter arrives, so slow
// or fragmented senders are handled transparently.
func ReadEnvelope(r *bufio.Reader) (Envelope, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			// Trailing frame without a newline is still a frame.
			err = nil
		} else {
			return Envelope{}, err
		}
	}

	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed frame: %w", err)
	}
	return env, nil
}

// WriteEnvelope encodes one frame followed by the delimiter.
func WriteEnvelope(w io.Writer, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	raw = append(raw, '\n')
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}
