// Package xlog is the minimal leveled logging surface shared by the
// encoder and decoder, mirroring the shape of quic-go's utils.Logger: a
// couple of narrow methods a caller can wire to whatever structured
// logger they already run, with a no-op default so nothing pays for
// logging it never asked for. The teacher's own logging package lives
// outside the retrieved slice of its tree, so this is a from-scratch
// reimplementation of the same surface rather than a copy.
package xlog

// Logger receives the encoder/decoder's diagnostic output outside the
// error-return contract. Currently the only call is Errorf with the
// disablement reason; nothing calls Debugf.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Noop implements Logger by discarding everything.
type Noop struct{}

func (Noop) Debugf(string, ...any) {}
func (Noop) Errorf(string, ...any) {}
