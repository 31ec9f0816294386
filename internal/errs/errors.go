// Package errs defines the single error type returned by every public wallet
// client operation, the subsystem unions it wraps, and the conversions from
// collaborator and library failures into it.
package errs

import (
    "errors"
    "strings"
)

// Error is the unified wallet client error. Values are immutable; helpers that
// attach context return a copy.
type Error struct {
    kind   Kind
    detail Detail
    op     string
}

// New returns an Error of the given kind without payload.
func New(kind Kind) *Error { return &Error{kind: kind} }

func withDetail(kind Kind, d Detail) *Error { return &Error{kind: kind, detail: d} }

// Kind returns the tag of e.
func (e *Error) Kind() Kind {
    if e == nil {
        return kindInvalid
    }
    return e.kind
}

// Detail returns the payload, or nil for kinds that carry none.
func (e *Error) Detail() Detail {
    if e == nil {
        return nil
    }
    return e.detail
}

// Op returns the operation that was in progress, if the caller attached one.
func (e *Error) Op() string {
    if e == nil {
        return ""
    }
    return e.op
}

func (e *Error) Error() string {
    if e == nil {
        return "<nil>"
    }
    var b strings.Builder
    if e.op != "" {
        b.WriteString(e.op)
        b.WriteString(": ")
    }
    b.WriteString(e.headline())
    if e.detail != nil {
        b.WriteString(": ")
        b.WriteString(e.detail.Error())
    }
    return b.String()
}

func (e *Error) headline() string {
    if !e.kind.Valid() {
        return messages[kindInvalid]
    }
    return messages[e.kind]
}

// Unwrap exposes the payload so errors.As can reach it.
func (e *Error) Unwrap() error {
    if e == nil || e.detail == nil {
        return nil
    }
    return e.detail
}

// Is matches on kind. A target without payload matches every error of its
// kind; a target with payload also requires an equal payload.
func (e *Error) Is(target error) bool {
    t, ok := target.(*Error)
    if !ok || e == nil || t == nil {
        return false
    }
    if t.kind != e.kind {
        return false
    }
    return t.detail == nil || t.detail == e.detail
}

// WithOp attaches the name of the operation in progress. Errors that are not
// an *Error are returned unchanged.
func WithOp(op string, err error) error {
    if err == nil {
        return nil
    }
    var e *Error
    if !errors.As(err, &e) || e == nil {
        return err
    }
    cp := *e
    cp.op = op
    return &cp
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
    var e *Error
    if !errors.As(err, &e) || e == nil {
        return kindInvalid, false
    }
    return e.kind, true
}

// Equal reports whether a and b are the same logical failure: same kind and
// equal payload. The attached operation is ignored.
func Equal(a, b error) bool {
    if a == nil || b == nil {
        return a == nil && b == nil
    }
    var ea, eb *Error
    if !errors.As(a, &ea) || !errors.As(b, &eb) {
        return false
    }
    return ea.kind == eb.kind && ea.detail == eb.detail
}

// Sentinels, one per kind. Payload-carrying kinds match any payload through
// errors.Is.
var (
    ErrNetwork    = New(KindNetwork)
    ErrRuskURI    = New(KindRuskURI)
    ErrRuskConn   = New(KindRuskConn)
    ErrProverConn = New(KindProverConn)
    ErrState      = New(KindState)
    ErrProver     = New(KindProver)
    ErrJSON       = New(KindJSON)
    ErrBytes      = New(KindBytes)
    ErrBase58     = New(KindBase58)
    ErrCanon      = New(KindCanon)
    ErrIO         = New(KindIO)
    ErrRng        = New(KindRng)

    ErrNotDirectory           = New(KindNotDirectory)
    ErrNotEnoughBalance       = New(KindNotEnoughBalance)
    ErrAmountIsZero           = New(KindAmountIsZero)
    ErrNoteCombinationProblem = New(KindNoteCombinationProblem)
    ErrNotEnoughGas           = New(KindNotEnoughGas)
    ErrStakingNotAllowed      = New(KindStakingNotAllowed)
    ErrAlreadyStaked          = New(KindAlreadyStaked)
    ErrNotStaked              = New(KindNotStaked)
    ErrNoReward               = New(KindNoReward)
    ErrBadAddress             = New(KindBadAddress)
    ErrAddressNotOwned        = New(KindAddressNotOwned)

    ErrWalletFileCorrupted   = New(KindWalletFileCorrupted)
    ErrUnknownFileVersion    = New(KindUnknownFileVersion)
    ErrWalletFileNotExists   = New(KindWalletFileNotExists)
    ErrWalletFileExists      = New(KindWalletFileExists)
    ErrWalletFileMissing     = New(KindWalletFileMissing)
    ErrInvalidPassword       = New(KindInvalidPassword)
    ErrInvalidMnemonicPhrase = New(KindInvalidMnemonicPhrase)

    ErrUnauthorized          = New(KindUnauthorized)
    ErrStatusWalletConnected = New(KindStatusWalletConnected)
    ErrOffline               = New(KindOffline)
    ErrSocketsNotSupported   = New(KindSocketsNotSupported)
)

// NotEnoughBalance reports that available funds (in lux) do not cover required.
func NotEnoughBalance(available, required uint64) *Error {
    return withDetail(KindNotEnoughBalance, Shortfall{Available: available, Required: required})
}

// BadAddress reports an unparsable recipient. A Base58 or Bytes failure
// behind it is kept as the payload; any other cause is dropped.
func BadAddress(cause error) *Error {
    var e *Error
    if errors.As(cause, &e) && e != nil {
        switch d := e.detail.(type) {
        case Base58Error, BytesError:
            return withDetail(KindBadAddress, d)
        }
    }
    return New(KindBadAddress)
}

func AlreadyStaked(index uint8) *Error { return withDetail(KindAlreadyStaked, StakeKey{Index: index}) }
func NotStaked(index uint8) *Error     { return withDetail(KindNotStaked, StakeKey{Index: index}) }
func NoReward(index uint8) *Error      { return withDetail(KindNoReward, StakeKey{Index: index}) }

// UnknownFileVersion reports a wallet file header version this client cannot read.
func UnknownFileVersion(found, expected uint8) *Error {
    return withDetail(KindUnknownFileVersion, FileVersion{Found: found, Expected: expected})
}

func NotDirectory(path string) *Error { return withDetail(KindNotDirectory, Dir{Path: path}) }

func SocketsNotSupported(detail string) *Error {
    return withDetail(KindSocketsNotSupported, Platform{Detail: detail})
}
