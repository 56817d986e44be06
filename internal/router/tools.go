package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jmourad/chainmcp/internal/backend"
)

// registerNetworkTools declares the three per-network operations. The
// handlers close over the network identifier only to look it up in the
// registry; everything else is uniform.
func (rt *Router) registerNetworkTools(s *server.MCPServer, network string) {
	balance := network + "-balance"
	s.AddTool(mcp.NewTool(balance,
		mcp.WithDescription(fmt.Sprintf("Get the balance of an address on the %s network", network)),
		mcp.WithString("address", mcp.Required(), mcp.Description("Address to look up")),
	), rt.dispatch(balance, staticNetwork(network), rt.balanceOp(network)))

	transaction := network + "-transaction"
	s.AddTool(mcp.NewTool(transaction,
		mcp.WithDescription(fmt.Sprintf("Look up a transaction on the %s network by its identifier", network)),
		mcp.WithString("txid", mcp.Required(), mcp.Description("Transaction identifier")),
	), rt.dispatch(transaction, staticNetwork(network), rt.transactionOp(network)))

	wallet := network + "-wallet-info"
	s.AddTool(mcp.NewTool(wallet,
		mcp.WithDescription(fmt.Sprintf("Get the balance and recent transactions of a %s address", network)),
		mcp.WithString("address", mcp.Required(), mcp.Description("Address to report on")),
	), rt.dispatch(wallet, staticNetwork(network), rt.walletOp(network)))
}

// registerGenericTools declares the cross-backend operations, implemented
// purely in terms of the per-network adapter contract.
func (rt *Router) registerGenericTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("wallet-info",
		mcp.WithDescription("Get the balance and recent transactions of an address on any supported network"),
		mcp.WithString("network", mcp.Required(),
			mcp.Description(fmt.Sprintf("Network identifier, one of: %s", strings.Join(rt.registry.Networks(), ", ")))),
		mcp.WithString("address", mcp.Required(), mcp.Description("Address to report on")),
	), rt.dispatch("wallet-info", argNetwork, rt.genericWalletOp))

	s.AddTool(mcp.NewTool("list-networks",
		mcp.WithDescription("List the networks this server can query"),
	), rt.dispatch("list-networks", staticNetwork("all"), rt.listNetworksOp))
}

func (rt *Router) balanceOp(network string) operationFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) *mcp.CallToolResult {
		address, err := req.RequireString("address")
		if err != nil {
			return mcp.NewToolResultError(err.Error())
		}

		a, err := rt.registry.Resolve(network)
		if err != nil {
			return mcp.NewToolResultError(err.Error())
		}

		raw, err := a.Balance(ctx, address)
		if err != nil {
			return mcp.NewToolResultError(err.Error())
		}
		return mcp.NewToolResultText(string(raw))
	}
}

func (rt *Router) transactionOp(network string) operationFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) *mcp.CallToolResult {
		txID, err := req.RequireString("txid")
		if err != nil {
			return mcp.NewToolResultError(err.Error())
		}

		a, err := rt.registry.Resolve(network)
		if err != nil {
			return mcp.NewToolResultError(err.Error())
		}

		raw, err := a.Transaction(ctx, txID)
		if err != nil {
			return mcp.NewToolResultError(err.Error())
		}
		return mcp.NewToolResultText(string(raw))
	}
}

func (rt *Router) walletOp(network string) operationFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) *mcp.CallToolResult {
		address, err := req.RequireString("address")
		if err != nil {
			return mcp.NewToolResultError(err.Error())
		}

		a, err := rt.registry.Resolve(network)
		if err != nil {
			return mcp.NewToolResultError(err.Error())
		}
		return rt.walletReport(ctx, a, address)
	}
}

// genericWalletOp resolves the network from the arguments and delegates to
// the same per-network contract as the direct tools. Unresolved networks get
// the same unsupported-backend flavored envelope as direct invocation.
func (rt *Router) genericWalletOp(ctx context.Context, req mcp.CallToolRequest) *mcp.CallToolResult {
	network, err := req.RequireString("network")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	address, err := req.RequireString("address")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}

	a, err := rt.registry.Resolve(network)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"unsupported network %q: supported networks are %s",
			network, strings.Join(rt.registry.Networks(), ", ")))
	}
	return rt.walletReport(ctx, a, address)
}

func (rt *Router) listNetworksOp(_ context.Context, _ mcp.CallToolRequest) *mcp.CallToolResult {
	data, err := json.Marshal(rt.registry.Networks())
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(data))
}

func (rt *Router) walletReport(ctx context.Context, a backend.Adapter, address string) *mcp.CallToolResult {
	report, err := a.WalletInfo(ctx, address)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}

	data, err := json.Marshal(report)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(data))
}
