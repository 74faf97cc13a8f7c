package domain

// AddressKind represents the resolved entity type of a raw address string.
type AddressKind string

const (
	KindTransaction  AddressKind = "TRANSACTION"
	KindWallet       AddressKind = "WALLET"
	KindProgram      AddressKind = "PROGRAM"
	KindStakeAccount AddressKind = "STAKE_ACCOUNT"
	KindVoteAccount  AddressKind = "VOTE_ACCOUNT"
	KindTokenMint    AddressKind = "TOKEN_MINT"
	KindTokenAccount AddressKind = "TOKEN_ACCOUNT"
	KindUnknown      AddressKind = "UNKNOWN"
)

// String returns the string representation of AddressKind.
func (k AddressKind) String() string {
	return string(k)
}

// AddressClassification is the result of resolving a raw input string.
// Produced fresh per request, never persisted.
type AddressClassification struct {
	RawInput string      `json:"raw_input"`
	Kind     AddressKind `json:"kind"`
}
