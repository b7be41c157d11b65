package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_SameCodeUsesLandingPage(t *testing.T) {
	composer := NewComposer(newTestCatalog(t))

	reply, err := composer.Compose(ExchangeRequest{
		GiveToken:  "USDT",
		GetToken:   "USDT",
		GiveMethod: MethodCrypto,
		GetMethod:  MethodCrypto,
		Location:   LocationOnline,
	})
	require.NoError(t, err)

	assert.True(t, reply.Generic)
	assert.Equal(t, "https://www.bestchange.com/", reply.PrimaryURL)
	assert.NotContains(t, reply.PrimaryURL, "-to-")
	assert.True(t, reply.Online)
	assert.Equal(t, "https://www.bybit.com/fiat/trade/otc/", reply.SecondaryURL)
}

func TestCompose_PairLinkAndMapSearch(t *testing.T) {
	composer := NewComposer(newTestCatalog(t))

	reply, err := composer.Compose(ExchangeRequest{
		GiveToken:  "UAH",
		GetToken:   "USD",
		GiveMethod: MethodCard,
		GetMethod:  MethodCash,
		Location:   "Kyiv",
	})
	require.NoError(t, err)

	assert.False(t, reply.Generic)
	assert.False(t, reply.Online)
	assert.Equal(t, "https://www.bestchange.com/visa-mastercard-uah-to-cash-dollar.html", reply.PrimaryURL)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Kyiv", reply.SecondaryURL)
	assert.Equal(t, "visa-mastercard-uah", reply.GiveCode)
	assert.Equal(t, "cash-dollar", reply.GetCode)
	assert.Equal(t, "UAH (card) → USD (cash), Kyiv", reply.Summary)
}

func TestCompose_EscapesLocation(t *testing.T) {
	composer := NewComposer(newTestCatalog(t))

	reply, err := composer.Compose(ExchangeRequest{
		GiveToken:  "USD",
		GetToken:   "BTC",
		GiveMethod: MethodCash,
		GetMethod:  MethodCrypto,
		Location:   "Нью Йорк & co",
	})
	require.NoError(t, err)
	assert.Contains(t, reply.SecondaryURL, "query=%D0%9D%D1%8C%D1%8E+%D0%99%D0%BE%D1%80%D0%BA+%26+co")
}

func TestCompose_Unresolved(t *testing.T) {
	composer := NewComposer(newTestCatalog(t))

	testCases := []struct {
		name string
		req  ExchangeRequest
	}{
		{
			name: "unknown give token",
			req:  ExchangeRequest{GiveToken: "XYZ", GetToken: "USD", GiveMethod: MethodCard, GetMethod: MethodCash, Location: "Kyiv"},
		},
		{
			name: "unknown get token",
			req:  ExchangeRequest{GiveToken: "BTC", GetToken: "QQQ", GiveMethod: MethodCrypto, GetMethod: MethodCard, Location: LocationOnline},
		},
		{
			name: "fiat with crypto method",
			req:  ExchangeRequest{GiveToken: "EUR", GetToken: "BTC", GiveMethod: MethodCrypto, GetMethod: MethodCrypto, Location: LocationOnline},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reply, err := composer.Compose(tc.req)
			assert.Nil(t, reply)
			assert.ErrorIs(t, err, ErrUnresolved)
		})
	}
}
