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

// Entity kinds addressable as resources.
const (
	kindWallet      = "wallet"
	kindTransaction = "transaction"
)

// registerNetworkResources declares the {network}://{kind}/{id} template for
// one network.
func (rt *Router) registerNetworkResources(s *server.MCPServer, network string) {
	tmpl := mcp.NewResourceTemplate(
		network+"://{kind}/{id}",
		network+" entities",
		mcp.WithTemplateDescription(fmt.Sprintf(
			"Wallets and transactions on the %s network, addressed as %s://{wallet|transaction}/{id}",
			network, network)),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(tmpl, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return rt.ReadResource(ctx, req.Params.URI)
	})
}

// ReadResource serves a resource read for a {network}://{kind}/{id} URI.
// Unknown networks, kinds, and backend failures all degrade to a textual
// payload describing the problem; the transport never sees a fault.
func (rt *Router) ReadResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	network, kind, id, err := parseResourceURI(uri)
	if err != nil {
		return textContents(uri, err.Error()), nil
	}

	a, err := rt.registry.Resolve(network)
	if err != nil {
		return textContents(uri, fmt.Sprintf(
			"network %q is unsupported: supported networks are %s",
			network, strings.Join(rt.registry.Networks(), ", "))), nil
	}

	switch kind {
	case kindWallet:
		report, err := a.WalletInfo(ctx, id)
		if err != nil {
			return textContents(uri, err.Error()), nil
		}
		data, err := json.Marshal(report)
		if err != nil {
			return textContents(uri, err.Error()), nil
		}
		return jsonContents(uri, data), nil

	case kindTransaction:
		raw, err := a.Transaction(ctx, id)
		if err != nil {
			return textContents(uri, err.Error()), nil
		}
		return jsonContents(uri, raw), nil

	default:
		return textContents(uri, fmt.Sprintf(
			"unknown entity kind %q: expected %s or %s", kind, kindWallet, kindTransaction)), nil
	}
}

// parseResourceURI splits {network}://{kind}/{id}. The id may itself contain
// slashes.
func parseResourceURI(uri string) (network, kind, id string, err error) {
	network, rest, ok := strings.Cut(uri, "://")
	if !ok || network == "" {
		return "", "", "", fmt.Errorf("resource URI %q: want {network}://{kind}/{id}: %w",
			uri, backend.ErrValidation)
	}

	kind, id, ok = strings.Cut(rest, "/")
	if !ok || kind == "" || id == "" {
		return "", "", "", fmt.Errorf("resource URI %q: want {network}://{kind}/{id}: %w",
			uri, backend.ErrValidation)
	}
	return network, kind, id, nil
}

func textContents(uri, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "text/plain", Text: text},
	}
}

func jsonContents(uri string, data []byte) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}
}
