package proto

import (
	"errors"
	"testing"

	"netforge/internal/sim"
)

func TestDecodeClientInputRoundTrip(t *testing.T) {
	payload, err := EncodeInput(InputMessage{ClientTick: 42, Seq: 7, Buttons: 5, AxisX: 0.5, AxisY: -0.25})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeClientInput(payload, 3)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := sim.ClientInput{ClientID: 3, ClientTick: 42, Seq: 7, Buttons: 5, AxisX: 0.5, AxisY: -0.25}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestDecodeClientInputClampsAxes(t *testing.T) {
	payload := []byte(`{"clientTick":1,"seq":1,"ax":3.0,"ay":-42}`)
	got, err := DecodeClientInput(payload, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AxisX != 1 || got.AxisY != -1 {
		t.Fatalf("expected clamped axes, got ax=%f ay=%f", got.AxisX, got.AxisY)
	}
}

func TestDecodeClientInputOptionalFieldsDefaultToZero(t *testing.T) {
	got, err := DecodeClientInput([]byte(`{"clientTick":9,"seq":2}`), 1)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Buttons != 0 || got.AxisX != 0 || got.AxisY != 0 {
		t.Fatalf("expected zero defaults, got %+v", got)
	}
}

func TestDecodeClientInputRejectsMalformedJSON(t *testing.T) {
	if _, err := DecodeClientInput([]byte("not-json"), 0); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestDecodeClientInputRequiresTickAndSeq(t *testing.T) {
	cases := []string{
		`{}`,
		`{"clientTick":1}`,
		`{"seq":1}`,
		`{"clientTick":-1,"seq":1}`,
	}
	for _, payload := range cases {
		_, err := DecodeClientInput([]byte(payload), 0)
		if !errors.Is(err, ErrSchema) {
			t.Fatalf("payload %s: expected schema error, got %v", payload, err)
		}
	}
}

func TestDecodeClientInputIgnoresUnknownFields(t *testing.T) {
	got, err := DecodeClientInput([]byte(`{"clientTick":1,"seq":4,"extra":"field"}`), 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Seq != 4 {
		t.Fatalf("expected seq 4, got %d", got.Seq)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	payload, err := EncodeSnapshot(Snapshot{ServerTick: 120, AckApplied: 17, AckRecv: 18})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ServerTick != 120 || got.AckApplied != 17 || got.AckRecv != 18 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestDecodeSnapshotRequiresServerTick(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"ackApplied":1}`))
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}
