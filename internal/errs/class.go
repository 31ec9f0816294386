package errs

import (
    "errors"

    "google.golang.org/grpc/codes"
)

// Class groups kinds by what the caller has to do about them.
type Class uint8

const (
    // ClassTransient failures may succeed on retry.
    ClassTransient Class = iota + 1
    // ClassConfig failures need a change of configuration or environment.
    ClassConfig
    // ClassIntegrity failures mean stored or received data is unusable.
    ClassIntegrity
    // ClassDomain failures are user-correctable business rule violations.
    ClassDomain
    // ClassPrecondition failures mean the client was used out of sequence.
    ClassPrecondition
    // ClassSecurity failures must surface only as an invalid credential.
    ClassSecurity
)

func (c Class) String() string {
    switch c {
    case ClassTransient:
        return "transient"
    case ClassConfig:
        return "config"
    case ClassIntegrity:
        return "integrity"
    case ClassDomain:
        return "domain"
    case ClassPrecondition:
        return "precondition"
    case ClassSecurity:
        return "security"
    }
    return "unknown"
}

var kindClasses = [kindCount]Class{
    KindNetwork:    ClassTransient,
    KindRuskConn:   ClassTransient,
    KindProverConn: ClassTransient,

    KindRuskURI:             ClassConfig,
    KindSocketsNotSupported: ClassConfig,
    KindNotDirectory:        ClassConfig,
    KindIO:                  ClassConfig,

    KindJSON:                ClassIntegrity,
    KindBytes:               ClassIntegrity,
    KindBase58:              ClassIntegrity,
    KindCanon:               ClassIntegrity,
    KindWalletFileCorrupted: ClassIntegrity,
    KindUnknownFileVersion:  ClassIntegrity,

    KindNotEnoughBalance:       ClassDomain,
    KindAmountIsZero:           ClassDomain,
    KindNoteCombinationProblem: ClassDomain,
    KindNotEnoughGas:           ClassDomain,
    KindStakingNotAllowed:      ClassDomain,
    KindAlreadyStaked:          ClassDomain,
    KindNotStaked:              ClassDomain,
    KindNoReward:               ClassDomain,
    KindBadAddress:             ClassDomain,
    KindAddressNotOwned:        ClassDomain,
    KindWalletFileNotExists:    ClassDomain,
    KindWalletFileExists:       ClassDomain,
    KindWalletFileMissing:      ClassDomain,

    KindUnauthorized:          ClassPrecondition,
    KindOffline:               ClassPrecondition,
    KindStatusWalletConnected: ClassPrecondition,

    KindInvalidPassword:       ClassSecurity,
    KindInvalidMnemonicPhrase: ClassSecurity,
    KindRng:                   ClassSecurity,
}

// Class returns the remediation class of e. Passthrough kinds are classified
// by their inner variant.
func (e *Error) Class() Class {
    if e == nil {
        return 0
    }
    switch d := e.detail.(type) {
    case StateError:
        switch d.Kind() {
        case StateBytes, StateCanon:
            return ClassIntegrity
        case StateIO:
            return ClassConfig
        }
        return ClassTransient
    case ProverError:
        switch d.Kind() {
        case ProverBytes, ProverCanon:
            return ClassIntegrity
        case ProverTransaction:
            return ClassDomain
        }
        return ClassTransient
    }
    if e.kind == KindState || e.kind == KindProver {
        return ClassTransient
    }
    if !e.kind.Valid() {
        return 0
    }
    return kindClasses[e.kind]
}

// ClassOf returns the class of the first *Error in err's chain.
func ClassOf(err error) (Class, bool) {
    var e *Error
    if !errors.As(err, &e) || e == nil {
        return 0, false
    }
    c := e.Class()
    return c, c != 0
}

// Retryable reports whether err is a transient failure of a call that was
// already in flight. Failures to establish the initial connection are not
// retryable, and neither are remote statuses that would repeat on retry.
func Retryable(err error) bool {
    var e *Error
    if !errors.As(err, &e) || e == nil || e.Class() != ClassTransient {
        return false
    }
    switch e.kind {
    case KindRuskConn, KindProverConn:
        return false
    }
    switch d := e.detail.(type) {
    case TransportError:
        return retryableCode(d.Code)
    case StateError:
        if st, ok := d.Status(); ok {
            return retryableCode(st.Code)
        }
    case ProverError:
        if st, ok := d.Status(); ok {
            return retryableCode(st.Code)
        }
    }
    return true
}

func retryableCode(c codes.Code) bool {
    switch c {
    case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
        return true
    }
    return false
}
