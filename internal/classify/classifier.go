// Package classify resolves a raw address string into a typed entity.
package classify

import (
	"context"
	"log"

	"github.com/mr-tron/base58"

	"github.com/eugenegl/solspy-sub000/internal/domain"
	"github.com/eugenegl/solspy-sub000/internal/observability"
	"github.com/eugenegl/solspy-sub000/internal/solana"
)

// Well-known program IDs owning the account kinds we distinguish.
const (
	StakeProgramID  = "Stake11111111111111111111111111111111111111"
	VoteProgramID   = "Vote111111111111111111111111111111111111111"
	SystemProgramID = "11111111111111111111111111111111"
	TokenProgramID  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

// SPL token program account data sizes.
const (
	mintAccountSize  = 82
	tokenAccountSize = 165
)

// signatureLength is the byte length of an ed25519 transaction signature.
const signatureLength = 64

// AccountFetcher is the slice of the RPC gateway classification needs.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, pubkey, commitment string) (*solana.AccountInfo, error)
}

// ownerRule maps an owning program to a classification. Rules are
// evaluated in order; the first owner match wins.
type ownerRule struct {
	owner string
	kind  func(info *solana.AccountInfo) domain.AddressKind
}

var ownerRules = []ownerRule{
	{StakeProgramID, func(*solana.AccountInfo) domain.AddressKind { return domain.KindStakeAccount }},
	{VoteProgramID, func(*solana.AccountInfo) domain.AddressKind { return domain.KindVoteAccount }},
	{SystemProgramID, func(*solana.AccountInfo) domain.AddressKind { return domain.KindWallet }},
	{TokenProgramID, classifyTokenOwned},
}

// classifyTokenOwned splits token-program-owned accounts by data length.
func classifyTokenOwned(info *solana.AccountInfo) domain.AddressKind {
	switch len(info.Data) {
	case mintAccountSize:
		return domain.KindTokenMint
	case tokenAccountSize:
		return domain.KindTokenAccount
	default:
		return domain.KindUnknown
	}
}

// Classifier resolves raw strings into typed entities. It never returns
// an error: malformed input and provider failures degrade to KindUnknown.
type Classifier struct {
	rpc    AccountFetcher
	logger *log.Logger
}

// New creates a Classifier over the given account fetcher.
func New(rpc AccountFetcher, logger *log.Logger) *Classifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Classifier{rpc: rpc, logger: logger}
}

// Classify determines the entity type of a raw input string.
func (c *Classifier) Classify(ctx context.Context, raw string) domain.AddressClassification {
	kind := c.resolve(ctx, raw)
	observability.RecordClassification(kind.String())
	return domain.AddressClassification{RawInput: raw, Kind: kind}
}

func (c *Classifier) resolve(ctx context.Context, raw string) domain.AddressKind {
	decoded, err := base58.Decode(raw)
	if err != nil {
		return domain.KindUnknown
	}

	// 64 decoded bytes is a transaction signature; 32 is a public key
	// and falls through to the account lookup.
	if len(decoded) == signatureLength {
		return domain.KindTransaction
	}

	info, err := c.rpc.GetAccountInfo(ctx, raw, solana.CommitmentConfirmed)
	if err != nil {
		c.logger.Printf("classify %s: account lookup failed: %v", raw, err)
		return domain.KindUnknown
	}
	if info == nil {
		return domain.KindUnknown
	}

	if info.Executable {
		return domain.KindProgram
	}

	for _, rule := range ownerRules {
		if rule.owner == info.Owner {
			return rule.kind(info)
		}
	}

	return domain.KindUnknown
}
