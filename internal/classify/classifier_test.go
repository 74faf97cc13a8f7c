package classify

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/mr-tron/base58"

	"github.com/eugenegl/solspy-sub000/internal/domain"
	"github.com/eugenegl/solspy-sub000/internal/solana"
)

// stubFetcher implements AccountFetcher from a fixed map.
type stubFetcher struct {
	accounts map[string]*solana.AccountInfo
	err      error
	calls    int
}

func (s *stubFetcher) GetAccountInfo(_ context.Context, pubkey, _ string) (*solana.AccountInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.accounts[pubkey], nil
}

func newClassifier(fetcher AccountFetcher) *Classifier {
	return New(fetcher, log.New(io.Discard, "", 0))
}

// encoded returns a base58 string decoding to n bytes filled with b.
func encoded(n int, b byte) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return base58.Encode(buf)
}

func TestClassify_TransactionSignature(t *testing.T) {
	fetcher := &stubFetcher{}
	c := newClassifier(fetcher)

	got := c.Classify(context.Background(), encoded(64, 7))
	if got.Kind != domain.KindTransaction {
		t.Fatalf("expected TRANSACTION, got %s", got.Kind)
	}
	if fetcher.calls != 0 {
		t.Errorf("expected no account lookup for a 64-byte signature, got %d", fetcher.calls)
	}
}

func TestClassify_OwnerRules(t *testing.T) {
	pubkey := encoded(32, 1)

	tests := []struct {
		name string
		info *solana.AccountInfo
		want domain.AddressKind
	}{
		{"executable is program", &solana.AccountInfo{Owner: "SomeLoader", Executable: true}, domain.KindProgram},
		{"stake owner", &solana.AccountInfo{Owner: StakeProgramID}, domain.KindStakeAccount},
		{"vote owner", &solana.AccountInfo{Owner: VoteProgramID}, domain.KindVoteAccount},
		{"system owner is wallet", &solana.AccountInfo{Owner: SystemProgramID}, domain.KindWallet},
		{"token owner 82 bytes is mint", &solana.AccountInfo{Owner: TokenProgramID, Data: make([]byte, 82)}, domain.KindTokenMint},
		{"token owner 165 bytes is token account", &solana.AccountInfo{Owner: TokenProgramID, Data: make([]byte, 165)}, domain.KindTokenAccount},
		{"token owner odd length is unknown", &solana.AccountInfo{Owner: TokenProgramID, Data: make([]byte, 100)}, domain.KindUnknown},
		{"unrecognized owner is unknown", &solana.AccountInfo{Owner: "SomeOtherProgram"}, domain.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{accounts: map[string]*solana.AccountInfo{pubkey: tt.info}}
			c := newClassifier(fetcher)

			got := c.Classify(context.Background(), pubkey)
			if got.Kind != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Kind)
			}
			if got.RawInput != pubkey {
				t.Errorf("expected raw input %q, got %q", pubkey, got.RawInput)
			}
		})
	}
}

func TestClassify_AccountNotFound(t *testing.T) {
	c := newClassifier(&stubFetcher{})

	got := c.Classify(context.Background(), encoded(32, 2))
	if got.Kind != domain.KindUnknown {
		t.Fatalf("expected UNKNOWN for missing account, got %s", got.Kind)
	}
}

func TestClassify_ProviderErrorDegradesToUnknown(t *testing.T) {
	c := newClassifier(&stubFetcher{err: errors.New("rpc unavailable")})

	got := c.Classify(context.Background(), encoded(32, 3))
	if got.Kind != domain.KindUnknown {
		t.Fatalf("expected UNKNOWN on provider error, got %s", got.Kind)
	}
}

func TestClassify_MalformedInput(t *testing.T) {
	fetcher := &stubFetcher{}
	c := newClassifier(fetcher)

	for _, raw := range []string{"", "not-base58-0OIl", "!!!"} {
		got := c.Classify(context.Background(), raw)
		if got.Kind != domain.KindUnknown {
			t.Errorf("input %q: expected UNKNOWN, got %s", raw, got.Kind)
		}
	}
}

func TestClassify_ThirtyTwoByteDecodeFallsThrough(t *testing.T) {
	// A 32-byte decode is a public key, not a signature, so the account
	// lookup must run.
	pubkey := encoded(32, 4)
	fetcher := &stubFetcher{accounts: map[string]*solana.AccountInfo{
		pubkey: {Owner: SystemProgramID},
	}}
	c := newClassifier(fetcher)

	got := c.Classify(context.Background(), pubkey)
	if got.Kind != domain.KindWallet {
		t.Fatalf("expected WALLET, got %s", got.Kind)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected exactly one account lookup, got %d", fetcher.calls)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	pubkey := encoded(32, 5)
	fetcher := &stubFetcher{accounts: map[string]*solana.AccountInfo{
		pubkey: {Owner: TokenProgramID, Data: make([]byte, 165)},
	}}
	c := newClassifier(fetcher)

	first := c.Classify(context.Background(), pubkey)
	second := c.Classify(context.Background(), pubkey)
	if first != second {
		t.Fatalf("classification not deterministic: %v vs %v", first, second)
	}
}
