package solana

import "context"

// Commitment levels for RPC queries.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// RPCClient defines the Solana RPC HTTP interface used by this service.
type RPCClient interface {
	// GetAccountInfo retrieves account info by public key at the given
	// commitment. Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey, commitment string) (*AccountInfo, error)

	// GetLatestBlockhash retrieves the most recent blockhash.
	GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error)
}

// AccountInfo represents Solana account information.
// Data is the raw account data, already base64-decoded.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       []byte
	Executable bool
	RentEpoch  uint64
}

// LatestBlockhash is the network's recent blockhash and fee anchor.
type LatestBlockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
	Slot                 int64
}
