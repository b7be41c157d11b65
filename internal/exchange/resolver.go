package exchange

import "strings"

// Resolve maps a raw user token and the payment method of its leg to a
// partner path segment. Terminal assets ignore the method; fiat currencies
// need Card or Cash.
func (c *Catalog) Resolve(token string, method Method) (string, error) {
	asset, ok := c.Lookup(token)
	if !ok {
		return "", &UnresolvedError{Token: token, Method: method, Reason: "unknown currency"}
	}

	if asset.Kind.Terminal() {
		return asset.Code, nil
	}

	switch method {
	case MethodCash:
		return renderCode(c.links.CashCode, asset), nil
	case MethodCard:
		if asset.Card != "" {
			return asset.Card, nil
		}
		return renderCode(c.links.CardCode, asset), nil
	case MethodCrypto:
		return "", &UnresolvedError{Token: token, Method: method, Reason: "fiat currency cannot be paid in crypto"}
	default:
		return "", &UnresolvedError{Token: token, Method: method, Reason: "payment method not chosen"}
	}
}

func renderCode(pattern string, asset Asset) string {
	return strings.NewReplacer(
		"{slug}", asset.Slug,
		"{ticker}", strings.ToLower(asset.ID),
	).Replace(pattern)
}
