package exchange

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T) (*Machine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewMachine(store, NewComposer(newTestCatalog(t)), []string{"cancel", "Отмена"}), store
}

func TestMachine_PairStep(t *testing.T) {
	machine, _ := newTestMachine(t)
	const id = int64(1)

	step := machine.Start(id)
	assert.Equal(t, StateAwaitingPair, step.State)

	step = machine.HandleText(id, "UAH")
	assert.ErrorIs(t, step.Err, ErrMalformedInput)
	assert.Equal(t, StateAwaitingPair, step.State)
	assert.Equal(t, StateAwaitingPair, machine.State(id))

	step = machine.HandleText(id, "  uah / usd  extra")
	require.NoError(t, step.Err)
	assert.Equal(t, StateAwaitingGiveMethod, step.State)
	assert.Equal(t, "uah", step.Request.GiveToken)
	assert.Equal(t, "usd", step.Request.GetToken)
}

func TestMachine_LocationSkippedWithoutCash(t *testing.T) {
	combos := [][2]Method{
		{MethodCard, MethodCard},
		{MethodCard, MethodCrypto},
		{MethodCrypto, MethodCard},
		{MethodCrypto, MethodCrypto},
	}

	for _, combo := range combos {
		t.Run(fmt.Sprintf("%s-%s", combo[0], combo[1]), func(t *testing.T) {
			machine, store := newTestMachine(t)
			const id = int64(7)

			machine.Start(id)
			machine.HandleText(id, "BTC ETH")
			machine.ChooseMethod(id, LegGive, combo[0])
			step := machine.ChooseMethod(id, LegGet, combo[1])

			assert.Equal(t, StateIdle, step.State)
			assert.Equal(t, LocationOnline, step.Request.Location)
			require.True(t, step.Done())
			assert.Contains(t, step.Reply.PrimaryURL, "bitcoin-to-ethereum")
			assert.True(t, step.Reply.Online)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestMachine_LocationVisitedWithCash(t *testing.T) {
	combos := [][2]Method{
		{MethodCash, MethodCash},
		{MethodCash, MethodCard},
		{MethodCash, MethodCrypto},
		{MethodCard, MethodCash},
		{MethodCrypto, MethodCash},
	}

	for _, combo := range combos {
		t.Run(fmt.Sprintf("%s-%s", combo[0], combo[1]), func(t *testing.T) {
			machine, _ := newTestMachine(t)
			const id = int64(8)

			machine.Start(id)
			machine.HandleText(id, "BTC ETH")
			machine.ChooseMethod(id, LegGive, combo[0])
			step := machine.ChooseMethod(id, LegGet, combo[1])

			assert.Equal(t, StateAwaitingLocation, step.State)
			assert.False(t, step.Done())
		})
	}
}

func TestMachine_CancelFromEveryState(t *testing.T) {
	advance := map[State]func(m *Machine, id int64){
		StateAwaitingPair: func(m *Machine, id int64) {},
		StateAwaitingGiveMethod: func(m *Machine, id int64) {
			m.HandleText(id, "UAH USD")
		},
		StateAwaitingGetMethod: func(m *Machine, id int64) {
			m.HandleText(id, "UAH USD")
			m.ChooseMethod(id, LegGive, MethodCard)
		},
		StateAwaitingLocation: func(m *Machine, id int64) {
			m.HandleText(id, "UAH USD")
			m.ChooseMethod(id, LegGive, MethodCard)
			m.ChooseMethod(id, LegGet, MethodCash)
		},
	}

	for state, prepare := range advance {
		for _, cancel := range []string{"text", "command"} {
			t.Run(string(state)+"/"+cancel, func(t *testing.T) {
				machine, store := newTestMachine(t)
				const id = int64(42)

				machine.Start(id)
				prepare(machine, id)
				require.Equal(t, state, machine.State(id))

				var step Step
				if cancel == "text" {
					step = machine.HandleText(id, " отмена ")
				} else {
					step = machine.Cancel(id)
				}

				assert.True(t, step.Cancelled)
				assert.Equal(t, StateIdle, step.State)
				assert.Equal(t, StateIdle, machine.State(id))
				assert.Equal(t, 0, store.Len())

				fresh := machine.Start(id)
				assert.Equal(t, ExchangeRequest{}, fresh.Request)
				assert.Equal(t, StateAwaitingPair, fresh.State)
			})
		}
	}
}

func TestMachine_CancelWhenIdle(t *testing.T) {
	machine, _ := newTestMachine(t)

	step := machine.Cancel(5)
	assert.False(t, step.Cancelled)
	assert.Equal(t, StateIdle, step.State)
}

func TestMachine_RejectsUnexpectedInput(t *testing.T) {
	machine, _ := newTestMachine(t)
	const id = int64(3)

	step := machine.HandleText(id, "UAH USD")
	assert.ErrorIs(t, step.Err, ErrNoConversation)

	step = machine.ChooseMethod(id, LegGive, MethodCard)
	assert.ErrorIs(t, step.Err, ErrNoConversation)

	machine.Start(id)
	step = machine.ChooseMethod(id, LegGive, MethodCard)
	assert.ErrorIs(t, step.Err, ErrUnexpectedInput)
	assert.Equal(t, StateAwaitingPair, step.State)

	machine.HandleText(id, "UAH USD")
	step = machine.HandleText(id, "card")
	assert.ErrorIs(t, step.Err, ErrUnexpectedInput)
	assert.Equal(t, StateAwaitingGiveMethod, step.State)

	step = machine.ChooseMethod(id, LegGet, MethodCard)
	assert.ErrorIs(t, step.Err, ErrUnexpectedInput, "stale get-leg button")
	assert.Equal(t, StateAwaitingGiveMethod, machine.State(id))

	step = machine.ChooseMethod(id, LegGive, MethodUnknown)
	assert.ErrorIs(t, step.Err, ErrUnexpectedInput)

	machine.ChooseMethod(id, LegGive, MethodCard)
	machine.ChooseMethod(id, LegGet, MethodCash)
	step = machine.HandleText(id, "   ")
	assert.ErrorIs(t, step.Err, ErrMalformedInput)
	assert.Equal(t, StateAwaitingLocation, step.State)
}

func TestMachine_EndToEndCash(t *testing.T) {
	machine, _ := newTestMachine(t)
	const id = int64(100)

	machine.Start(id)
	machine.HandleText(id, "UAH USD")
	machine.ChooseMethod(id, LegGive, MethodCard)
	step := machine.ChooseMethod(id, LegGet, MethodCash)
	require.Equal(t, StateAwaitingLocation, step.State)

	step = machine.HandleText(id, "Kyiv")
	require.NoError(t, step.Err)
	require.True(t, step.Done())
	assert.Equal(t, StateIdle, step.State)
	assert.Contains(t, step.Reply.PrimaryURL, "visa-mastercard-uah-to-cash-dollar")
	assert.Contains(t, step.Reply.SecondaryURL, "Kyiv")
	assert.Equal(t, "Kyiv", step.Request.Location)
	assert.Equal(t, StateIdle, machine.State(id))
}

func TestMachine_EndToEndUnresolved(t *testing.T) {
	machine, store := newTestMachine(t)
	const id = int64(101)

	machine.Start(id)
	machine.HandleText(id, "XYZ USD")
	machine.ChooseMethod(id, LegGive, MethodCard)
	machine.ChooseMethod(id, LegGet, MethodCash)
	step := machine.HandleText(id, "Kyiv")

	assert.ErrorIs(t, step.Err, ErrUnresolved)
	assert.Nil(t, step.Reply)
	assert.Equal(t, StateIdle, step.State)
	assert.Equal(t, 0, store.Len())
}

func TestMachine_StartDiscardsUnfinishedRequest(t *testing.T) {
	machine, _ := newTestMachine(t)
	const id = int64(9)

	machine.Start(id)
	machine.HandleText(id, "BTC USDT")
	step := machine.Start(id)

	assert.Equal(t, StateAwaitingPair, step.State)
	assert.Empty(t, step.Request.GiveToken)
}

func TestMachine_ConversationsAreIndependent(t *testing.T) {
	machine, _ := newTestMachine(t)

	machine.Start(1)
	machine.Start(2)
	machine.HandleText(1, "BTC ETH")

	assert.Equal(t, StateAwaitingGiveMethod, machine.State(1))
	assert.Equal(t, StateAwaitingPair, machine.State(2))

	machine.Cancel(1)
	assert.Equal(t, StateAwaitingPair, machine.State(2))
}

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"UAH USD", []string{"UAH", "USD"}},
		{"btc->eth", []string{"btc", "eth"}},
		{"гривна, доллар", []string{"гривна", "доллар"}},
		{"   ", []string{}},
		{"USDT", []string{"USDT"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.input))
		})
	}
}
