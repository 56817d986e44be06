package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/jmourad/chainmcp/internal/backend"
)

const testAddress = "Vote111111111111111111111111111111111111111"

// fakeSignature renders a syntactically valid base58 signature.
func fakeSignature(i int) string {
	var sig solana.Signature
	sig[0] = byte(i + 1)
	return sig.String()
}

// newRPCNode serves the minimal Solana JSON-RPC surface the adapter touches.
func newRPCNode(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var result string
		switch req.Method {
		case "getBalance":
			result = `{"context":{"slot":100},"value":2500000000}`
		case "getSignaturesForAddress":
			entries := make([]string, 25)
			for i := range entries {
				entries[i] = fmt.Sprintf(`{"signature":%q,"slot":%d}`, fakeSignature(i), 100-i)
			}
			result = "[" + strings.Join(entries, ",") + "]"
		default:
			result = "null"
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAdapter(t *testing.T, rpcURL string) *Adapter {
	t.Helper()

	a := New(Config{RPCURL: rpcURL, Timeout: 2 * time.Second}, nil)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestBalance_RendersLamportsAndSol(t *testing.T) {
	node := newRPCNode(t)
	a := newAdapter(t, node.URL)

	raw, err := a.Balance(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}

	var payload struct {
		Address  string  `json:"address"`
		Lamports uint64  `json:"lamports"`
		Sol      float64 `json:"sol"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Lamports != 2500000000 {
		t.Errorf("lamports = %d, want 2500000000", payload.Lamports)
	}
	if payload.Sol != 2.5 {
		t.Errorf("sol = %v, want 2.5", payload.Sol)
	}
}

func TestBalance_RejectsBadPublicKey(t *testing.T) {
	node := newRPCNode(t)
	a := newAdapter(t, node.URL)

	_, err := a.Balance(context.Background(), "not-base58!!!")
	if !errors.Is(err, backend.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestBalance_NodeDown(t *testing.T) {
	node := newRPCNode(t)
	a := newAdapter(t, node.URL)
	node.Close()

	_, err := a.Balance(context.Background(), testAddress)
	if !errors.Is(err, backend.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestTransaction_RejectsBadSignature(t *testing.T) {
	node := newRPCNode(t)
	a := newAdapter(t, node.URL)

	_, err := a.Transaction(context.Background(), "nope")
	if !errors.Is(err, backend.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestWalletInfo_TruncatesSignatureHistory(t *testing.T) {
	node := newRPCNode(t)
	a := newAdapter(t, node.URL)

	report, err := a.WalletInfo(context.Background(), testAddress)
	if err != nil {
		t.Fatalf("WalletInfo failed: %v", err)
	}

	if len(report.Transactions) != backend.HistoryLimit {
		t.Fatalf("got %d transactions, want %d", len(report.Transactions), backend.HistoryLimit)
	}
	if !report.Truncated {
		t.Error("Truncated flag not set")
	}

	// The first kept entry is the newest signature the node reported.
	var entry struct {
		Signature string `json:"signature"`
	}
	if err := json.Unmarshal(report.Transactions[0], &entry); err != nil {
		t.Fatalf("history entry is not JSON: %v", err)
	}
	if entry.Signature != fakeSignature(0) {
		t.Errorf("first entry signature = %q, want %q", entry.Signature, fakeSignature(0))
	}
}
