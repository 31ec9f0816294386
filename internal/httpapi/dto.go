package httpapi

import (
    "github.com/google/uuid"

    "github.com/grutesr1/DUSK-test/internal/dusk"
)

type createWalletRequest struct {
    Password string `json:"password"`
    Mnemonic string `json:"mnemonic,omitempty"`
}

type createWalletResponse struct {
    Mnemonic string `json:"mnemonic"`
}

type walletStatusResponse struct {
    Exists bool `json:"exists"`
    Open   bool `json:"open"`
    Online bool `json:"online"`
}

type openWalletRequest struct {
    Password string `json:"password"`
}

type addressResponse struct {
    Index   uint8  `json:"index"`
    Address string `json:"address"`
}

// Amounts are decimal DUSK strings; the _lux fields carry the exact value.
type balanceResponse struct {
    Index        uint8  `json:"index"`
    Value        string `json:"value"`
    Spendable    string `json:"spendable"`
    ValueLux     uint64 `json:"value_lux"`
    SpendableLux uint64 `json:"spendable_lux"`
}

type stakeResponse struct {
    Index       uint8  `json:"index"`
    Staked      bool   `json:"staked"`
    Amount      string `json:"amount"`
    Reward      string `json:"reward"`
    Eligibility uint64 `json:"eligibility"`
}

type gas struct {
    GasLimit uint64 `json:"gas_limit,omitempty"`
    GasPrice uint64 `json:"gas_price,omitempty"`
}

// FromAddress, when set, names the sender by address instead of index.
type transferRequest struct {
    From        uint8  `json:"from"`
    FromAddress string `json:"from_address,omitempty"`
    To          string `json:"to"`
    Amount      string `json:"amount"`
    gas
}

type stakeRequest struct {
    Index  uint8  `json:"index"`
    Amount string `json:"amount"`
    gas
}

type txResponse struct {
    ID uuid.UUID `json:"id"`
}

func toStakeResponse(idx uint8, st dusk.Stake) stakeResponse {
    return stakeResponse{
        Index:       idx,
        Staked:      st.Staked,
        Amount:      st.Amount.String(),
        Reward:      st.Reward.String(),
        Eligibility: st.Eligibility,
    }
}
