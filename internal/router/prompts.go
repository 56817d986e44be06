package router

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jmourad/chainmcp/internal/backend"
)

// registerPrompts declares the prompt templates. Rendering is pure text
// composition; the only failure path is a missing required argument.
func (rt *Router) registerPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("check-balance",
		mcp.WithPromptDescription("Summarize the balance of an address in plain language"),
		mcp.WithArgument("network", mcp.ArgumentDescription("Network the address lives on"), mcp.RequiredArgument()),
		mcp.WithArgument("address", mcp.ArgumentDescription("Address to check"), mcp.RequiredArgument()),
	), rt.checkBalancePrompt)

	s.AddPrompt(mcp.NewPrompt("analyze-wallet",
		mcp.WithPromptDescription("Review a wallet's balance and recent activity"),
		mcp.WithArgument("network", mcp.ArgumentDescription("Network the wallet lives on"), mcp.RequiredArgument()),
		mcp.WithArgument("address", mcp.ArgumentDescription("Wallet address to analyze"), mcp.RequiredArgument()),
	), rt.analyzeWalletPrompt)

	s.AddPrompt(mcp.NewPrompt("trace-transaction",
		mcp.WithPromptDescription("Explain what a transaction did"),
		mcp.WithArgument("network", mcp.ArgumentDescription("Network the transaction is on"), mcp.RequiredArgument()),
		mcp.WithArgument("txid", mcp.ArgumentDescription("Transaction identifier"), mcp.RequiredArgument()),
	), rt.traceTransactionPrompt)
}

func (rt *Router) checkBalancePrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	network, address, err := requirePromptArgs(req, "network", "address")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf(
		"Check the balance of %s on the %s network using the %s-balance tool, then "+
			"summarize the result in one sentence, converting raw units to the network's "+
			"main denomination.",
		address, network, network)
	return promptResult("Balance check", text), nil
}

func (rt *Router) analyzeWalletPrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	network, address, err := requirePromptArgs(req, "network", "address")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf(
		"Fetch the wallet report for %s on the %s network using the wallet-info tool. "+
			"Describe the current balance, how active the wallet has been recently, and "+
			"anything notable in its last transactions.",
		address, network)
	return promptResult("Wallet analysis", text), nil
}

func (rt *Router) traceTransactionPrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	network, txID, err := requirePromptArgs(req, "network", "txid")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf(
		"Look up transaction %s on the %s network using the %s-transaction tool and "+
			"explain in plain language what it did: who sent what to whom, the fee paid, "+
			"and whether it succeeded.",
		txID, network, network)
	return promptResult("Transaction trace", text), nil
}

// requirePromptArgs extracts two required prompt arguments.
func requirePromptArgs(req mcp.GetPromptRequest, first, second string) (string, string, error) {
	a := req.Params.Arguments[first]
	b := req.Params.Arguments[second]
	if a == "" {
		return "", "", fmt.Errorf("missing required argument %q: %w", first, backend.ErrValidation)
	}
	if b == "" {
		return "", "", fmt.Errorf("missing required argument %q: %w", second, backend.ErrValidation)
	}
	return a, b, nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
