package siamese

import (
	"errors"
	"testing"
)

func TestEncoderDecoderRecoverSingleLoss(t *testing.T) {
	enc := NewEncoder(EncoderConfig{})
	dec := NewDecoder(DecoderConfig{})

	var lostColumn Column
	var lostPayload []byte
	for i := 0; i < 12; i++ {
		payload := []byte{byte(i), byte(i + 1)}
		col, err := enc.Add(payload)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if i == 4 {
			lostColumn, lostPayload = col, payload
			continue
		}
		if err := dec.AddOriginal(col, payload); err != nil {
			t.Fatalf("AddOriginal: %v", err)
		}
		rec, err := enc.Encode()
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if err := dec.AddRecovery(rec); err != nil {
			t.Fatalf("AddRecovery: %v", err)
		}
	}

	ready, err := dec.IsReady()
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if !ready {
		t.Fatal("expected decoder to be ready after enough recovery packets")
	}

	recovered, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(recovered) != 1 || recovered[0].Column != lostColumn {
		t.Fatalf("recovered = %+v, want exactly column %d", recovered, lostColumn)
	}
	if string(recovered[0].Payload) != string(lostPayload) {
		t.Fatalf("recovered payload = %v, want %v", recovered[0].Payload, lostPayload)
	}
}

func TestEncoderAckTrimsWindow(t *testing.T) {
	enc := NewEncoder(EncoderConfig{})
	dec := NewDecoder(DecoderConfig{})

	var cols []Column
	for i := 0; i < 5; i++ {
		col, err := enc.Add([]byte{byte(i)})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		cols = append(cols, col)
		if err := dec.AddOriginal(col, []byte{byte(i)}); err != nil {
			t.Fatalf("AddOriginal: %v", err)
		}
	}

	ack, err := dec.Ack(1024)
	if err != nil {
		t.Fatalf("dec.Ack: %v", err)
	}
	next, err := enc.Ack(ack)
	if err != nil {
		t.Fatalf("enc.Ack: %v", err)
	}
	if next != cols[len(cols)-1]+1 {
		t.Fatalf("next_expected = %d, want %d", next, cols[len(cols)-1]+1)
	}
}

func TestKindClassifiesSentinelErrors(t *testing.T) {
	if got := Kind(nil); got != Success {
		t.Fatalf("Kind(nil) = %v, want Success", got)
	}
	if got := Kind(errors.New("unrecognized")); got != InvalidInput {
		t.Fatalf("Kind(unrecognized) = %v, want InvalidInput", got)
	}

	dec := NewDecoder(DecoderConfig{})
	if _, err := dec.Get(0); err == nil {
		t.Fatal("expected Get on an unknown column to fail")
	} else if got := Kind(err); got != NeedMoreData {
		t.Fatalf("Kind(Get unknown column) = %v, want NeedMoreData", got)
	}
}
