package exchange

import (
	"fmt"
	"net/url"
	"strings"
)

// ComposedReply is the result of a completed exchange request
type ComposedReply struct {
	PrimaryURL   string `json:"primary_url"`
	SecondaryURL string `json:"secondary_url"`
	// Generic is set when both legs resolved to the same code and PrimaryURL is the landing page
	Generic  bool   `json:"generic"`
	Online   bool   `json:"online"`
	GiveCode string `json:"give_code"`
	GetCode  string `json:"get_code"`
	Summary  string `json:"summary"`
}

// Composer turns a fully collected request into partner links
type Composer struct {
	catalog *Catalog
}

// NewComposer creates a composer over the given catalog
func NewComposer(catalog *Catalog) *Composer {
	return &Composer{catalog: catalog}
}

// Catalog returns the catalog the composer resolves against
func (c *Composer) Catalog() *Catalog {
	return c.catalog
}

// Compose resolves both legs and builds the primary and secondary links.
// It fails only when a token cannot be resolved.
func (c *Composer) Compose(req ExchangeRequest) (*ComposedReply, error) {
	giveCode, err := c.catalog.Resolve(req.GiveToken, req.GiveMethod)
	if err != nil {
		return nil, err
	}
	getCode, err := c.catalog.Resolve(req.GetToken, req.GetMethod)
	if err != nil {
		return nil, err
	}

	links := c.catalog.Links()
	reply := &ComposedReply{
		GiveCode: giveCode,
		GetCode:  getCode,
		Online:   isOnline(req.Location),
	}

	if giveCode == getCode {
		reply.Generic = true
		reply.PrimaryURL = links.LandingURL
	} else {
		reply.PrimaryURL = strings.NewReplacer("{give}", giveCode, "{get}", getCode).Replace(links.PairURL)
	}

	if reply.Online {
		reply.SecondaryURL = links.P2PURL
	} else {
		reply.SecondaryURL = strings.ReplaceAll(links.MapSearchURL, "{location}", url.QueryEscape(strings.TrimSpace(req.Location)))
	}

	reply.Summary = c.summary(req)
	return reply, nil
}

func (c *Composer) summary(req ExchangeRequest) string {
	location := strings.TrimSpace(req.Location)
	if isOnline(location) {
		location = LocationOnline
	}
	return fmt.Sprintf("%s (%s) → %s (%s), %s",
		c.displayName(req.GiveToken), req.GiveMethod,
		c.displayName(req.GetToken), req.GetMethod,
		location)
}

func (c *Composer) displayName(token string) string {
	if asset, ok := c.catalog.Lookup(token); ok {
		return asset.ID
	}
	return normalizeToken(token)
}

func isOnline(location string) bool {
	return strings.EqualFold(strings.TrimSpace(location), LocationOnline)
}
