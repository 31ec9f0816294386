package errs

import (
    "crypto/aes"
    "encoding/json"
    "errors"
    "net/url"
    "os"
)

// Conversions from collaborator and library failures. Every helper taking an
// error returns nil for nil, passes an *Error through untouched, and is total
// over everything else.

func passthrough(err error) (error, bool) {
    if err == nil {
        return nil, true
    }
    var e *Error
    if errors.As(err, &e) && e != nil {
        return err, true
    }
    return nil, false
}

// FromState wraps a state client failure.
func FromState(e StateError) *Error { return withDetail(KindState, e) }

// FromProver wraps a prover client failure.
func FromProver(e ProverError) *Error { return withDetail(KindProver, e) }

// StateFailure converts the result of a state client call at the wallet boundary.
func StateFailure(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    return FromState(NewStateError(err))
}

// ProverFailure converts the result of a prover client call at the wallet boundary.
func ProverFailure(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    return FromProver(NewProverError(err))
}

// FromJSON converts an encoding/json failure.
func FromJSON(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    var (
        syn *json.SyntaxError
        typ *json.UnmarshalTypeError
    )
    d := JSONError{Msg: err.Error()}
    switch {
    case errors.As(err, &syn):
        d.Offset = syn.Offset
        d.Msg = syn.Error()
    case errors.As(err, &typ):
        d.Offset = typ.Offset
        d.Field = typ.Field
        d.Msg = "cannot decode " + typ.Value + " into " + typ.Type.String()
    }
    return withDetail(KindJSON, d)
}

// FromIO converts a filesystem failure.
func FromIO(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    if d, ok := pathOf(err); ok {
        return withDetail(KindIO, d)
    }
    var (
        le *os.LinkError
        se *os.SyscallError
    )
    switch {
    case errors.As(err, &le):
        return withDetail(KindIO, IOError{Op: le.Op, Path: le.Old + " -> " + le.New, Msg: le.Err.Error()})
    case errors.As(err, &se):
        return withDetail(KindIO, IOError{Op: se.Syscall, Msg: se.Err.Error()})
    }
    return withDetail(KindIO, IOError{Op: "io", Msg: err.Error()})
}

// FromURI converts an endpoint that failed to parse.
func FromURI(raw string, err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    var ue *url.Error
    if errors.As(err, &ue) {
        return withDetail(KindRuskURI, URIError{URI: ue.URL, Msg: ue.Err.Error()})
    }
    return withDetail(KindRuskURI, URIError{URI: raw, Msg: err.Error()})
}

// FromBase58 converts a base58 decoding failure.
func FromBase58(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    return withDetail(KindBase58, Base58Error{Msg: err.Error()})
}

// FromBytes converts a fixed-size decoding failure. Unknown causes become
// InvalidData carrying their text.
func FromBytes(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    var be BytesError
    if errors.As(err, &be) {
        return withDetail(KindBytes, be)
    }
    return withDetail(KindBytes, InvalidData(err.Error()))
}

// FromCanon converts a canonical (CBOR) encoding failure.
func FromCanon(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    var ce CanonError
    if errors.As(err, &ce) {
        return withDetail(KindCanon, ce)
    }
    return withDetail(KindCanon, CanonError{Msg: err.Error()})
}

// FromRng converts a failure of the system randomness source.
func FromRng(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    return withDetail(KindRng, RngError{Msg: err.Error()})
}

// FromMnemonic converts a recovery phrase validation failure. The cause is
// dropped on purpose: the phrase must not leak through error text.
func FromMnemonic(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    return New(KindInvalidMnemonicPhrase)
}

// FromCipher converts a wallet file decryption failure. A bad key size maps to
// WalletFileCorrupted, anything else (failed authentication) to InvalidPassword.
func FromCipher(err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    var ks aes.KeySizeError
    if errors.As(err, &ks) {
        return New(KindWalletFileCorrupted)
    }
    return New(KindInvalidPassword)
}

// Network reports a transport failure on a call that was already in flight.
func Network(endpoint string, err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    return withDetail(KindNetwork, transportOf(endpoint, err))
}

// RuskConnFailure reports that the initial connection to the node failed.
func RuskConnFailure(endpoint string, err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    return withDetail(KindRuskConn, transportOf(endpoint, err))
}

// ProverConnFailure reports that the initial connection to the prover failed.
func ProverConnFailure(endpoint string, err error) error {
    if out, ok := passthrough(err); ok {
        return out
    }
    return withDetail(KindProverConn, transportOf(endpoint, err))
}

func transportOf(endpoint string, err error) TransportError {
    st := statusOf(err)
    return TransportError{Endpoint: endpoint, Code: st.Code, Msg: st.Message}
}
