package errs

import "errors"

// PublicMessage is the text safe to show outside the process. Security class
// failures all render the same string; transient and integrity failures drop
// their payload, which may describe internal endpoints or file contents.
func PublicMessage(err error) string {
    if err == nil {
        return ""
    }
    var e *Error
    if !errors.As(err, &e) || e == nil {
        return "internal error"
    }
    switch e.Class() {
    case ClassSecurity:
        return "invalid credential"
    case ClassTransient, ClassIntegrity:
        return e.headline()
    }
    if e.detail == nil {
        return e.headline()
    }
    switch e.detail.(type) {
    case Dir, IOError:
        return e.headline()
    }
    return e.headline() + ": " + e.detail.Error()
}

// Code returns the stable machine code for err, "internal" when err is not
// an *Error.
func Code(err error) string {
    var e *Error
    if !errors.As(err, &e) || e == nil {
        return "internal"
    }
    return e.kind.String()
}
