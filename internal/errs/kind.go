package errs

// Kind identifies a wallet client failure. The set is closed: every error
// returned by a public wallet operation carries exactly one of these.
type Kind uint8

const (
	// zero value is not a valid kind
	kindInvalid Kind = iota

	// transport and connection
	KindNetwork
	KindRuskURI
	KindRuskConn
	KindProverConn

	// subsystem passthrough
	KindState
	KindProver

	// serialization
	KindJSON
	KindBytes
	KindBase58
	KindCanon

	// filesystem
	KindIO
	KindNotDirectory

	// randomness
	KindRng

	// domain rules
	KindNotEnoughBalance
	KindAmountIsZero
	KindNoteCombinationProblem
	KindNotEnoughGas
	KindStakingNotAllowed
	KindAlreadyStaked
	KindNotStaked
	KindNoReward
	KindBadAddress
	KindAddressNotOwned

	// wallet file lifecycle
	KindWalletFileCorrupted
	KindUnknownFileVersion
	KindWalletFileNotExists
	KindWalletFileExists
	KindWalletFileMissing
	KindInvalidPassword
	KindInvalidMnemonicPhrase

	// access control and mode
	KindUnauthorized
	KindStatusWalletConnected
	KindOffline

	// platform capability
	KindSocketsNotSupported

	kindCount
)

var kindCodes = [kindCount]string{
	kindInvalid:                "invalid",
	KindNetwork:                "network",
	KindRuskURI:                "rusk_uri",
	KindRuskConn:               "rusk_conn",
	KindProverConn:             "prover_conn",
	KindState:                  "state",
	KindProver:                 "prover",
	KindJSON:                   "json",
	KindBytes:                  "bytes",
	KindBase58:                 "base58",
	KindCanon:                  "canon",
	KindIO:                     "io",
	KindNotDirectory:           "not_directory",
	KindRng:                    "rng",
	KindNotEnoughBalance:       "not_enough_balance",
	KindAmountIsZero:           "amount_is_zero",
	KindNoteCombinationProblem: "note_combination_problem",
	KindNotEnoughGas:           "not_enough_gas",
	KindStakingNotAllowed:      "staking_not_allowed",
	KindAlreadyStaked:          "already_staked",
	KindNotStaked:              "not_staked",
	KindNoReward:               "no_reward",
	KindBadAddress:             "bad_address",
	KindAddressNotOwned:        "address_not_owned",
	KindWalletFileCorrupted:    "wallet_file_corrupted",
	KindUnknownFileVersion:     "unknown_file_version",
	KindWalletFileNotExists:    "wallet_file_not_exists",
	KindWalletFileExists:       "wallet_file_exists",
	KindWalletFileMissing:      "wallet_file_missing",
	KindInvalidPassword:        "invalid_password",
	KindInvalidMnemonicPhrase:  "invalid_mnemonic_phrase",
	KindUnauthorized:           "unauthorized",
	KindStatusWalletConnected:  "status_wallet_connected",
	KindOffline:                "offline",
	KindSocketsNotSupported:    "sockets_not_supported",
}

// messages are the diagnostic headlines rendered by (*Error).Error.
var messages = [kindCount]string{
	kindInvalid:                "invalid error",
	KindNetwork:                "Network error",
	KindRuskURI:                "Rusk uri failure",
	KindRuskConn:               "Rusk connection failure",
	KindProverConn:             "Prover cluster connection failure",
	KindState:                  "State client error",
	KindProver:                 "Prover client error",
	KindJSON:                   "JSON serialization error",
	KindBytes:                  "Bytes encoding error",
	KindBase58:                 "Base58 error",
	KindCanon:                  "Canonical encoding error",
	KindIO:                     "Filesystem error",
	KindNotDirectory:           "Path provided is not a directory",
	KindRng:                    "Random number generator error",
	KindNotEnoughBalance:       "Not enough balance to perform transaction",
	KindAmountIsZero:           "Amount to transfer/stake cannot be zero",
	KindNoteCombinationProblem: "Note combination for the given value is impossible given the maximum amount of inputs in a transaction",
	KindNotEnoughGas:           "Not enough gas to perform this transaction",
	KindStakingNotAllowed:      "Staking is only allowed when you're running your own local Rusk instance (Tip: Point `rusk_addr` to localhost)",
	KindAlreadyStaked:          "A stake already exists for this key",
	KindNotStaked:              "A stake does not exist for this key",
	KindNoReward:               "No reward available for this key",
	KindBadAddress:             "Invalid address",
	KindAddressNotOwned:        "Address does not belong to this wallet",
	KindWalletFileCorrupted:    "Wallet file content is not valid",
	KindUnknownFileVersion:     "File version not recognized",
	KindWalletFileNotExists:    "Wallet file not found on disk",
	KindWalletFileExists:       "A wallet file with this name already exists",
	KindWalletFileMissing:      "Wallet file is missing",
	KindInvalidPassword:        "Wrong wallet password",
	KindInvalidMnemonicPhrase:  "Recovery phrase is not valid",
	KindUnauthorized:           "Unauthorized to access this wallet",
	KindStatusWalletConnected:  "Status callback needs to be set before connecting",
	KindOffline:                "Command not available in offline mode",
	KindSocketsNotSupported:    "Socket connection is not available on this platform",
}

// String returns the stable snake_case code of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return kindCodes[kindInvalid]
	}
	return kindCodes[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k > kindInvalid && k < kindCount }

// Kinds lists every declared kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := kindInvalid + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
