package solana

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Client looks up native SOL balances over JSON-RPC.
type Client struct {
	rpc *solanarpc.Client
}

// NewClient builds an RPC client with a flat request timeout so a
// stalled endpoint resolves to an error instead of blocking callers.
func NewClient(endpoint string, timeout time.Duration) *Client {
	rpcClient := jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: timeout},
	})
	return &Client{rpc: solanarpc.NewWithCustomRPCClient(rpcClient)}
}

// GetBalance returns the account balance in SOL.
func (c *Client) GetBalance(ctx context.Context, address string) (float64, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("invalid wallet address %q: %w", address, err)
	}

	out, err := c.rpc.GetBalance(ctx, pubkey, solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", address, err)
	}

	return float64(out.Value) / float64(solana.LAMPORTS_PER_SOL), nil
}

// ValidateAddress reports whether address parses as a Solana public key.
func ValidateAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}
