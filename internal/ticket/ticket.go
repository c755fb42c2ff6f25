// Package ticket encodes chart refresh tickets. A ticket captures the
// chart spec and the filters it was generated under, so a chart can be
// re-rendered later without replaying the configuration dialog.
//
// Tickets are MessagePack-encoded and ZStandard-compressed, making
// them safe to hand to clients as opaque bytes.
package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dataviewer/dataviewer-go/chart"
	"github.com/dataviewer/dataviewer-go/filter"
)

// ErrEmptyTicket indicates an empty ticket payload.
var ErrEmptyTicket = errors.New("empty ticket data")

// Ticket is the decoded refresh payload.
type Ticket struct {
	// SourceID names the dataset the chart was generated against.
	SourceID string `msgpack:"source_id"`

	// Chart is the normalized chart spec.
	Chart chart.Spec `msgpack:"chart"`

	// Filters are the predicates active at generation time.
	Filters []filter.Predicate `msgpack:"filters,omitempty"`

	// IssuedAt records when the ticket was created.
	IssuedAt time.Time `msgpack:"issued_at"`
}

// Codec encodes and decodes tickets. Create once and reuse to
// eliminate allocations. Safe for concurrent use.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a reusable ticket codec. Uses SpeedDefault (level 3)
// for balanced compression ratio and speed. Caller must call Close()
// when done to release resources.
func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Encode serializes and compresses a ticket.
func (c *Codec) Encode(t *Ticket) ([]byte, error) {
	data, err := msgpack.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}

	// EncodeAll is goroutine-safe.
	dst := make([]byte, 0, len(data)/2)
	return c.encoder.EncodeAll(data, dst), nil
}

// Decode decompresses and deserializes a ticket.
func (c *Codec) Decode(data []byte) (*Ticket, error) {
	if len(data) == 0 {
		return nil, ErrEmptyTicket
	}

	// DecodeAll is goroutine-safe.
	decompressed, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress ticket: %w", err)
	}

	var t Ticket
	if err := msgpack.Unmarshal(decompressed, &t); err != nil {
		return nil, fmt.Errorf("failed to decode ticket: %w", err)
	}
	return &t, nil
}

// Close releases codec resources.
func (c *Codec) Close() error {
	if c.decoder != nil {
		c.decoder.Close()
	}
	if c.encoder != nil {
		return c.encoder.Close()
	}
	return nil
}
