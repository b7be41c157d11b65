package exchange

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Kind classifies a catalog asset
type Kind string

const (
	KindCrypto Kind = "crypto"
	KindBank   Kind = "bank"
	KindFiat   Kind = "fiat"
)

// Terminal reports whether assets of this kind resolve without a payment method
func (k Kind) Terminal() bool {
	return k == KindCrypto || k == KindBank
}

// Asset is one canonical currency, crypto asset or bank
type Asset struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Code    string   `yaml:"code" json:"code,omitempty"`
	Slug    string   `yaml:"slug" json:"slug,omitempty"`
	Card    string   `yaml:"card" json:"card,omitempty"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// LinkTemplates holds the partner site URL conventions
type LinkTemplates struct {
	LandingURL   string `yaml:"landing_url"`
	PairURL      string `yaml:"pair_url"`
	P2PURL       string `yaml:"p2p_url"`
	MapSearchURL string `yaml:"map_search_url"`
	CashCode     string `yaml:"cash_code"`
	CardCode     string `yaml:"card_code"`
}

type catalogFile struct {
	Links  LinkTemplates `yaml:"links"`
	Assets []Asset       `yaml:"assets"`
}

// Catalog maps user aliases to canonical assets. It is read-only after loading.
type Catalog struct {
	links   LinkTemplates
	assets  []Asset
	aliases map[string]int
}

// DefaultCatalog loads the catalog embedded into the binary
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalogFile loads a catalog from a YAML file
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := file.Links.validate(); err != nil {
		return nil, err
	}

	catalog := &Catalog{
		links:   file.Links,
		assets:  make([]Asset, 0, len(file.Assets)),
		aliases: make(map[string]int),
	}

	for _, asset := range file.Assets {
		if asset.ID == "" {
			return nil, errors.New("catalog asset without id")
		}
		switch {
		case asset.Kind.Terminal():
			if asset.Code == "" {
				return nil, fmt.Errorf("asset %s: %s asset needs a code", asset.ID, asset.Kind)
			}
		case asset.Kind == KindFiat:
			if asset.Slug == "" {
				return nil, fmt.Errorf("asset %s: fiat asset needs a slug", asset.ID)
			}
		default:
			return nil, fmt.Errorf("asset %s: unknown kind %q", asset.ID, asset.Kind)
		}

		idx := len(catalog.assets)
		// The id is always an alias of its own asset
		for _, alias := range append([]string{asset.ID}, asset.Aliases...) {
			key := normalizeToken(alias)
			if key == "" {
				continue
			}
			if prev, ok := catalog.aliases[key]; ok {
				if prev == idx {
					continue
				}
				return nil, fmt.Errorf("alias %q is used by both %s and %s", key, catalog.assets[prev].ID, asset.ID)
			}
			catalog.aliases[key] = idx
		}
		catalog.assets = append(catalog.assets, asset)
	}

	if len(catalog.assets) == 0 {
		return nil, errors.New("catalog has no assets")
	}

	return catalog, nil
}

func (l LinkTemplates) validate() error {
	required := map[string]string{
		"landing_url":    l.LandingURL,
		"pair_url":       l.PairURL,
		"p2p_url":        l.P2PURL,
		"map_search_url": l.MapSearchURL,
		"cash_code":      l.CashCode,
		"card_code":      l.CardCode,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("catalog links: %s is required", key)
		}
	}
	return nil
}

// Lookup finds the asset behind a user token
func (c *Catalog) Lookup(token string) (Asset, bool) {
	idx, ok := c.aliases[normalizeToken(token)]
	if !ok {
		return Asset{}, false
	}
	return c.assets[idx], true
}

// Assets returns the catalog assets in file order
func (c *Catalog) Assets() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// Links returns the partner link templates
func (c *Catalog) Links() LinkTemplates {
	return c.links
}

// Examples returns up to n asset ids per kind, useful for user guidance
func (c *Catalog) Examples(n int) []string {
	counts := make(map[Kind]int)
	var out []string
	for _, asset := range c.assets {
		if counts[asset.Kind] >= n {
			continue
		}
		counts[asset.Kind]++
		out = append(out, asset.ID)
	}
	return out
}

func normalizeToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}
