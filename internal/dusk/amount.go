package dusk

import (
    "errors"
    "math"
    "math/bits"

    "github.com/govalues/decimal"
)

// Lux is the smallest unit of DUSK. 1 DUSK = 10^9 lux.
type Lux uint64

const luxScale = 9

// MaxLux is where checked arithmetic saturates. No balance reaches it, so an
// amount equal to MaxLux can never be covered.
const MaxLux = Lux(math.MaxUint64)

var errNegativeAmount = errors.New("amount must not be negative")

// Dusk converts a whole number of DUSK to lux.
func Dusk(n uint64) Lux { return Lux(n * 1_000_000_000) }

// Add returns l+o, or MaxLux when the sum does not fit.
func (l Lux) Add(o Lux) Lux {
    sum, carry := bits.Add64(uint64(l), uint64(o), 0)
    if carry != 0 {
        return MaxLux
    }
    return Lux(sum)
}

// Decimal returns the amount in DUSK.
func (l Lux) Decimal() (decimal.Decimal, error) {
    if uint64(l) > math.MaxInt64 {
        return decimal.Decimal{}, errors.New("amount out of range")
    }
    return decimal.New(int64(l), luxScale)
}

// String renders the amount in DUSK with trailing zeros removed.
func (l Lux) String() string {
    d, err := l.Decimal()
    if err != nil {
        return "overflow"
    }
    return d.Trim(0).String()
}

// ParseDusk reads a decimal DUSK amount such as "12.5" into lux.
func ParseDusk(s string) (Lux, error) {
    d, err := decimal.Parse(s)
    if err != nil {
        return 0, err
    }
    if d.IsNeg() {
        return 0, errNegativeAmount
    }
    d = d.Trim(0)
    if d.Scale() > luxScale {
        return 0, errors.New("amount has more than 9 decimal places")
    }
    lux := d.Coef()
    for i := d.Scale(); i < luxScale; i++ {
        if lux > math.MaxUint64/10 {
            return 0, errors.New("amount out of range")
        }
        lux *= 10
    }
    return Lux(lux), nil
}
