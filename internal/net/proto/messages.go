package proto

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"netforge/internal/sim"
)

// ErrSchema reports a payload that parsed as JSON but is missing or
// mistypes a required field.
var ErrSchema = errors.New("input schema violation")

// InputMessage documents the client -> server payload on channel 0.
// clientTick and seq are required; the rest default to zero. The
// server clamps both axes into [-1, 1].
type InputMessage struct {
	ClientTick uint32  `json:"clientTick" jsonschema:"title=Client tick,description=Tick counter on the sending client"`
	Seq        uint32  `json:"seq" jsonschema:"title=Input sequence,description=Monotonic per-client input sequence used for acknowledgements"`
	Buttons    uint32  `json:"buttons,omitempty" jsonschema:"description=Bitmask of pressed buttons"`
	AxisX      float32 `json:"ax,omitempty" jsonschema:"minimum=-1,maximum=1,description=Horizontal axis"`
	AxisY      float32 `json:"ay,omitempty" jsonschema:"minimum=-1,maximum=1,description=Vertical axis"`
}

// Snapshot documents the server -> client payload on channel 0. The
// acknowledgement pair is client-specific, so snapshots are sent per
// peer rather than broadcast.
type Snapshot struct {
	ServerTick uint64 `json:"serverTick" jsonschema:"description=Simulation tick id at emission time"`
	AckApplied uint32 `json:"ackApplied" jsonschema:"description=Last input sequence the simulation applied"`
	AckRecv    uint32 `json:"ackRecv" jsonschema:"description=Last input sequence the server received"`
}

// inputFrame is the lenient decode target: pointers distinguish
// missing fields, float64 tolerates the JSON number representation.
type inputFrame struct {
	ClientTick *float64 `json:"clientTick"`
	Seq        *float64 `json:"seq"`
	Buttons    *float64 `json:"buttons"`
	AxisX      *float64 `json:"ax"`
	AxisY      *float64 `json:"ay"`
}

// DecodeClientInput parses an input payload into the simulation's
// input type, attributing it to clientID. Unknown fields are ignored;
// optional fields default to zero; axes are clamped.
func DecodeClientInput(payload []byte, clientID uint32) (sim.ClientInput, error) {
	var frame inputFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return sim.ClientInput{}, fmt.Errorf("decode input: %w", err)
	}
	if frame.ClientTick == nil || frame.Seq == nil {
		return sim.ClientInput{}, fmt.Errorf("%w: clientTick and seq are required", ErrSchema)
	}
	if *frame.ClientTick < 0 || *frame.Seq < 0 {
		return sim.ClientInput{}, fmt.Errorf("%w: clientTick and seq must be non-negative", ErrSchema)
	}

	input := sim.ClientInput{
		ClientID:   clientID,
		ClientTick: uint32(*frame.ClientTick),
		Seq:        uint32(*frame.Seq),
	}
	if frame.Buttons != nil && *frame.Buttons > 0 {
		input.Buttons = uint32(*frame.Buttons)
	}
	if frame.AxisX != nil {
		input.AxisX = clampAxis(*frame.AxisX)
	}
	if frame.AxisY != nil {
		input.AxisY = clampAxis(*frame.AxisY)
	}
	return input, nil
}

// clampAxis coerces v into [-1, 1]. JSON cannot carry NaN, so the NaN
// branch is purely defensive and yields the neutral position.
func clampAxis(v float64) float32 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return float32(v)
}

// EncodeInput renders an input payload. Client side of the contract.
func EncodeInput(msg InputMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// EncodeSnapshot renders a per-peer snapshot payload.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// DecodeSnapshot parses a snapshot payload. Client side of the
// contract; required fields mirror DecodeClientInput's strictness.
func DecodeSnapshot(payload []byte) (Snapshot, error) {
	var frame struct {
		ServerTick *uint64 `json:"serverTick"`
		AckApplied *uint32 `json:"ackApplied"`
		AckRecv    *uint32 `json:"ackRecv"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if frame.ServerTick == nil {
		return Snapshot{}, fmt.Errorf("%w: serverTick is required", ErrSchema)
	}
	snap := Snapshot{ServerTick: *frame.ServerTick}
	if frame.AckApplied != nil {
		snap.AckApplied = *frame.AckApplied
	}
	if frame.AckRecv != nil {
		snap.AckRecv = *frame.AckRecv
	}
	return snap, nil
}
