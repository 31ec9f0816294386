package errs

import (
    "fmt"
    "strconv"

    "github.com/govalues/decimal"
    "google.golang.org/grpc/codes"
    "google.golang.org/grpc/status"
)

// Detail is the payload carried by an Error. The set of implementations is
// closed to this package and every implementation is a comparable value.
type Detail interface {
    error
    isDetail()
}

// Status is a non-success status reported by a remote service.
type Status struct {
    Code    codes.Code
    Message string
}

func (s Status) Error() string {
    return fmt.Sprintf("rpc error: code = %s desc = %s", s.Code, s.Message)
}

// GRPCStatus lets status.FromError recover the original status.
func (s Status) GRPCStatus() *status.Status { return status.New(s.Code, s.Message) }

// BytesReason tells which fixed-size decoding rule was violated.
type BytesReason uint8

const (
    ReasonInvalidData BytesReason = iota + 1
    ReasonBadLength
    ReasonInvalidChar
)

// BytesError is a failure decoding a fixed-size byte representation.
type BytesError struct {
    Reason   BytesReason
    Found    int
    Expected int
    Char     rune
    Index    int
    Msg      string
}

// InvalidData reports bytes that do not decode to a valid value.
func InvalidData(msg string) BytesError { return BytesError{Reason: ReasonInvalidData, Msg: msg} }

// BadLength reports a byte slice of the wrong size.
func BadLength(found, expected int) BytesError {
    return BytesError{Reason: ReasonBadLength, Found: found, Expected: expected}
}

// InvalidChar reports a character outside the accepted alphabet.
func InvalidChar(ch rune, index int) BytesError {
    return BytesError{Reason: ReasonInvalidChar, Char: ch, Index: index}
}

func (e BytesError) Error() string {
    switch e.Reason {
    case ReasonBadLength:
        return fmt.Sprintf("bad length: found %d, expected %d", e.Found, e.Expected)
    case ReasonInvalidChar:
        return fmt.Sprintf("invalid char %q at index %d", e.Char, e.Index)
    default:
        if e.Msg == "" {
            return "invalid data"
        }
        return "invalid data: " + e.Msg
    }
}

// CanonError is a canonical (CBOR) encoding or decoding failure.
type CanonError struct{ Msg string }

func (e CanonError) Error() string { return e.Msg }

// CacheError is a failure of the local note cache.
type CacheError struct {
    Op  string
    Msg string
}

func (e CacheError) Error() string { return "cache " + e.Op + ": " + e.Msg }

// IOError is a filesystem failure.
type IOError struct {
    Op   string
    Path string
    Msg  string
}

func (e IOError) Error() string {
    if e.Path == "" {
        return e.Op + ": " + e.Msg
    }
    return e.Op + " " + e.Path + ": " + e.Msg
}

// JSONError is a JSON encoding or decoding failure.
type JSONError struct {
    Offset int64
    Field  string
    Msg    string
}

func (e JSONError) Error() string {
    s := e.Msg
    if e.Field != "" {
        s += " (field " + e.Field + ")"
    }
    if e.Offset > 0 {
        s += " at offset " + strconv.FormatInt(e.Offset, 10)
    }
    return s
}

type Base58Error struct{ Msg string }

func (e Base58Error) Error() string { return e.Msg }

// URIError is a malformed service endpoint.
type URIError struct {
    URI string
    Msg string
}

func (e URIError) Error() string { return strconv.Quote(e.URI) + ": " + e.Msg }

// TransportError is a connection or in-flight transport failure.
type TransportError struct {
    Endpoint string
    Code     codes.Code
    Msg      string
}

func (e TransportError) Error() string {
    s := "code = " + e.Code.String() + " desc = " + e.Msg
    if e.Endpoint == "" {
        return s
    }
    return e.Endpoint + ": " + s
}

type RngError struct{ Msg string }

func (e RngError) Error() string { return e.Msg }

// Shortfall is the pair of amounts (in lux) behind an insufficient balance.
type Shortfall struct {
    Available uint64
    Required  uint64
}

func (e Shortfall) Error() string {
    return "available " + formatLux(e.Available) + ", required " + formatLux(e.Required)
}

// StakeKey names the wallet key a staking rule was checked against.
type StakeKey struct{ Index uint8 }

func (e StakeKey) Error() string { return "key #" + strconv.Itoa(int(e.Index)) }

// FileVersion is the header version found on disk and the one this client reads.
type FileVersion struct {
    Found    uint8
    Expected uint8
}

func (e FileVersion) Error() string {
    return fmt.Sprintf("found version %d, expected %d", e.Found, e.Expected)
}

// Platform describes a capability missing on the running target.
type Platform struct{ Detail string }

func (e Platform) Error() string { return e.Detail }

// Dir is the path that was expected to be a directory.
type Dir struct{ Path string }

func (e Dir) Error() string { return e.Path }

func (Status) isDetail()         {}
func (BytesError) isDetail()     {}
func (CanonError) isDetail()     {}
func (CacheError) isDetail()     {}
func (IOError) isDetail()        {}
func (JSONError) isDetail()      {}
func (Base58Error) isDetail()    {}
func (URIError) isDetail()       {}
func (TransportError) isDetail() {}
func (RngError) isDetail()       {}
func (Shortfall) isDetail()      {}
func (StakeKey) isDetail()       {}
func (FileVersion) isDetail()    {}
func (Platform) isDetail()       {}
func (Dir) isDetail()            {}
func (StateError) isDetail()     {}
func (ProverError) isDetail()    {}

// 1 DUSK = 10^9 lux
const luxScale = 9

func formatLux(lux uint64) string {
    if lux > 1<<63-1 {
        return strconv.FormatUint(lux, 10) + " lux"
    }
    d, err := decimal.New(int64(lux), luxScale)
    if err != nil {
        return strconv.FormatUint(lux, 10) + " lux"
    }
    return d.Trim(0).String() + " DUSK"
}
