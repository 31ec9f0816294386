package errs

import (
    "context"
    "errors"
    "io/fs"

    "github.com/fxamacker/cbor/v2"
    "google.golang.org/grpc/codes"
    "google.golang.org/grpc/status"
)

// StateKind is the tag of a StateError.
type StateKind uint8

const (
    StateRusk StateKind = iota + 1
    StateBytes
    StateCanon
    StateCache
    StateIO
)

func (k StateKind) String() string {
    switch k {
    case StateRusk:
        return "rusk"
    case StateBytes:
        return "bytes"
    case StateCanon:
        return "canon"
    case StateCache:
        return "cache"
    case StateIO:
        return "io"
    }
    return "unknown"
}

// stateCause is implemented by Status, BytesError, CanonError, CacheError and IOError.
type stateCause interface {
    error
    stateCause()
}

func (Status) stateCause()     {}
func (BytesError) stateCause() {}
func (CanonError) stateCause() {}
func (CacheError) stateCause() {}
func (IOError) stateCause()    {}

// StateError is a failure reported by the chain state service client.
// The zero value is a Rusk failure with an unknown status.
type StateError struct {
    cause stateCause
}

// NewStateError maps any failure raised inside the state client to its
// StateError variant. It never fails.
func NewStateError(err error) StateError {
    var se StateError
    if errors.As(err, &se) {
        return se
    }
    var (
        be BytesError
        ce CanonError
        ca CacheError
        ie IOError
        st Status
    )
    switch {
    case errors.As(err, &ce):
        return StateError{cause: ce}
    case errors.As(err, &ca):
        return StateError{cause: ca}
    case errors.As(err, &be):
        return StateError{cause: be}
    case errors.As(err, &ie):
        return StateError{cause: ie}
    case errors.As(err, &st):
        return StateError{cause: st}
    }
    if c, ok := canonOf(err); ok {
        return StateError{cause: c}
    }
    if p, ok := pathOf(err); ok {
        return StateError{cause: p}
    }
    return StateError{cause: statusOf(err)}
}

// Kind returns the variant tag.
func (e StateError) Kind() StateKind {
    switch e.cause.(type) {
    case BytesError:
        return StateBytes
    case CanonError:
        return StateCanon
    case CacheError:
        return StateCache
    case IOError:
        return StateIO
    }
    return StateRusk
}

// Status returns the remote status of a StateRusk error.
func (e StateError) Status() (Status, bool) {
    if e.cause == nil {
        return Status{Code: codes.Unknown}, true
    }
    st, ok := e.cause.(Status)
    return st, ok
}

func (e StateError) Error() string {
    switch e.Kind() {
    case StateBytes:
        return "invalid bytes from state: " + e.causeText()
    case StateCanon:
        return "state serialization failed: " + e.causeText()
    case StateCache:
        return "failed to read/write cache: " + e.causeText()
    case StateIO:
        return "state i/o failed: " + e.causeText()
    }
    return "rusk returned an error: " + e.causeText()
}

func (e StateError) causeText() string {
    if e.cause == nil {
        return Status{Code: codes.Unknown}.Error()
    }
    return e.cause.Error()
}

func (e StateError) Unwrap() error {
    if e.cause == nil {
        return nil
    }
    return e.cause
}

// ProverKind is the tag of a ProverError.
type ProverKind uint8

const (
    ProverRusk ProverKind = iota + 1
    ProverBytes
    ProverCanon
    ProverTransaction
)

func (k ProverKind) String() string {
    switch k {
    case ProverRusk:
        return "rusk"
    case ProverBytes:
        return "bytes"
    case ProverCanon:
        return "canon"
    case ProverTransaction:
        return "transaction"
    }
    return "unknown"
}

// Rejection is the verifier's free-text reason for refusing a transaction.
// The text is opaque; never branch on its content.
type Rejection struct{ Reason string }

func (e Rejection) Error() string { return e.Reason }

type proverCause interface {
    error
    proverCause()
}

func (Status) proverCause()     {}
func (BytesError) proverCause() {}
func (CanonError) proverCause() {}
func (Rejection) proverCause()  {}

// ProverError is a failure reported by the proving service client.
// The zero value is a Rusk failure with an unknown status.
type ProverError struct {
    cause proverCause
}

// Rejected builds the transaction rejection variant.
func Rejected(reason string) ProverError { return ProverError{cause: Rejection{Reason: reason}} }

// NewProverError maps any failure raised inside the prover client to its
// ProverError variant. It never fails.
func NewProverError(err error) ProverError {
    var pe ProverError
    if errors.As(err, &pe) {
        return pe
    }
    var (
        rj Rejection
        be BytesError
        ce CanonError
        st Status
    )
    switch {
    case errors.As(err, &rj):
        return ProverError{cause: rj}
    case errors.As(err, &ce):
        return ProverError{cause: ce}
    case errors.As(err, &be):
        return ProverError{cause: be}
    case errors.As(err, &st):
        return ProverError{cause: st}
    }
    if c, ok := canonOf(err); ok {
        return ProverError{cause: c}
    }
    return ProverError{cause: statusOf(err)}
}

func (e ProverError) Kind() ProverKind {
    switch e.cause.(type) {
    case BytesError:
        return ProverBytes
    case CanonError:
        return ProverCanon
    case Rejection:
        return ProverTransaction
    }
    return ProverRusk
}

// Status returns the remote status of a ProverRusk error.
func (e ProverError) Status() (Status, bool) {
    if e.cause == nil {
        return Status{Code: codes.Unknown}, true
    }
    st, ok := e.cause.(Status)
    return st, ok
}

func (e ProverError) Error() string {
    text := Status{Code: codes.Unknown}.Error()
    if e.cause != nil {
        text = e.cause.Error()
    }
    switch e.Kind() {
    case ProverBytes:
        return "invalid bytes from prover: " + text
    case ProverCanon:
        return "prover serialization failed: " + text
    case ProverTransaction:
        return "transaction rejected: " + text
    }
    return "prover returned an error: " + text
}

func (e ProverError) Unwrap() error {
    if e.cause == nil {
        return nil
    }
    return e.cause
}

func statusOf(err error) Status {
    if err == nil {
        return Status{Code: codes.Unknown}
    }
    if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
        st := status.FromContextError(err)
        return Status{Code: st.Code(), Message: st.Message()}
    }
    st := status.Convert(err)
    return Status{Code: st.Code(), Message: st.Message()}
}

func canonOf(err error) (CanonError, bool) {
    var (
        syn *cbor.SyntaxError
        sem *cbor.SemanticError
        typ *cbor.UnmarshalTypeError
        unm *cbor.UnsupportedTypeError
        ext *cbor.ExtraneousDataError
    )
    if errors.As(err, &syn) || errors.As(err, &sem) || errors.As(err, &typ) || errors.As(err, &unm) || errors.As(err, &ext) {
        return CanonError{Msg: err.Error()}, true
    }
    return CanonError{}, false
}

func pathOf(err error) (IOError, bool) {
    var pe *fs.PathError
    if !errors.As(err, &pe) {
        return IOError{}, false
    }
    return IOError{Op: pe.Op, Path: pe.Path, Msg: pe.Err.Error()}, true
}
