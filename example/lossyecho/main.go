// Command lossyecho drives an Encoder and Decoder across a simulated
// lossy channel and reports what the decoder recovers.
package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofec/siamese"
)

const messageCount = 40

func main() {
	enc := siamese.NewEncoder(siamese.EncoderConfig{})
	dec := siamese.NewDecoder(siamese.DecoderConfig{})

	lost := map[siamese.Column]bool{}
	for i := 0; i < messageCount; i++ {
		payload := []byte(fmt.Sprintf("msg-%03d: %s", i, strings.Repeat("x", 16)))
		col, err := enc.Add(payload)
		if err != nil {
			log.Fatalf("encoder.Add: %v", err)
		}

		// Drop every fifth original; everything else is delivered.
		if i%5 == 4 {
			lost[col] = true
			continue
		}
		if err := dec.AddOriginal(col, payload); err != nil {
			log.Fatalf("decoder.AddOriginal(%d): %v", col, err)
		}

		// One recovery packet per original keeps the decoder's matrix
		// current without needing a lost original to trigger it.
		rec, err := enc.Encode()
		if err != nil {
			log.Fatalf("encoder.Encode: %v", err)
		}
		if err := dec.AddRecovery(rec); err != nil {
			log.Fatalf("decoder.AddRecovery: %v", err)
		}
	}

	recovered, err := dec.Decode()
	if err != nil {
		log.Fatalf("decoder.Decode: %v", err)
	}

	fmt.Printf("dropped %d originals, recovered %d\n", len(lost), len(recovered))
	for _, r := range recovered {
		if !lost[r.Column] {
			log.Fatalf("recovered column %d that was never dropped", r.Column)
		}
		fmt.Printf("  column %d: %q\n", r.Column, r.Payload)
	}
	if len(recovered) != len(lost) {
		log.Fatalf("recovered %d of %d dropped originals", len(recovered), len(lost))
	}
}
