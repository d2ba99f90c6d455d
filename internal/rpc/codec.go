package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec carries the hand-defined message structs over Connect as plain
// JSON, replacing the default protobuf codec on both handlers and clients.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, message)
}

// WithJSONCodec returns the Connect option wiring the JSON codec. Pass it
// to every handler and client built against this contract.
func WithJSONCodec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
