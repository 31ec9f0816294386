package rusk

import (
    "github.com/fxamacker/cbor/v2"

    "github.com/grutesr1/DUSK-test/internal/errs"
)

// codecName is the content-subtype sent on the wire.
const codecName = "cbor"

// cborCodec frames every request and response as canonical CBOR.
type cborCodec struct{}

var canonical cbor.EncMode

func init() {
    em, err := cbor.CanonicalEncOptions().EncMode()
    if err != nil {
        panic(err)
    }
    canonical = em
}

// rawFrame skips decoding in the transport so clients can decode responses
// themselves and keep the decoder's error.
type rawFrame []byte

func (cborCodec) Marshal(v any) ([]byte, error) {
    if f, ok := v.(*rawFrame); ok {
        return *f, nil
    }
    return canonical.Marshal(v)
}

func (cborCodec) Unmarshal(data []byte, v any) error {
    if f, ok := v.(*rawFrame); ok {
        *f = append((*f)[:0], data...)
        return nil
    }
    return cbor.Unmarshal(data, v)
}

func (cborCodec) Name() string { return codecName }

// decodeFrame decodes a response frame. Failures come back as errs.CanonError.
func decodeFrame(f rawFrame, v any) error {
    if err := cbor.Unmarshal(f, v); err != nil {
        return errs.CanonError{Msg: err.Error()}
    }
    return nil
}
