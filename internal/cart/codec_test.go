package cart

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_CurrentVersion(t *testing.T) {
	p := product("Cola", "1.50", 4)
	front, _, err := Reduce(Cart{}, AddItem(p))
	require.NoError(t, err)

	d := NewDrafts().With("front", front)
	d.Active = "front"

	data, err := Encode(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":2`)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "front", got.Active)
	assert.ElementsMatch(t, []string{DefaultName, "front"}, got.Names())
	require.Len(t, got.Get("front").Lines, 1)
	assert.Equal(t, p.ID, got.Get("front").Lines[0].ProductID)
	assert.True(t, got.Get("front").Lines[0].UnitPrice.Equal(decimal.RequireFromString("1.50")))
}

func TestDecode_V1SingleCart(t *testing.T) {
	id := uuid.New()
	payload := fmt.Sprintf(`{"version":1,"lines":[{"product_id":%q,"name":"Milk","unit_price":"2.00","quantity":2,"stock_at_add_time":5}]}`, id)

	got, err := Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, DefaultName, got.Active)
	lines := got.Get(DefaultName).Lines
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestDecode_LegacyArray(t *testing.T) {
	id := uuid.New()
	payload := fmt.Sprintf(`[{"productId":%q,"name":"Bread","price":"0.80","quantity":3,"stock":10},{"productId":"not-a-uuid","quantity":1,"stock":1}]`, id)

	got, err := Decode([]byte(payload))
	require.NoError(t, err)
	lines := got.Get(DefaultName).Lines
	require.Len(t, lines, 1)
	assert.Equal(t, id, lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 10, lines[0].StockAtAddTime)
}

func TestDecode_SanitizesLines(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	payload := fmt.Sprintf(`{"version":2,"active":"x","carts":{"x":{"lines":[
		{"product_id":%q,"unit_price":"1","quantity":9,"stock_at_add_time":4},
		{"product_id":%q,"unit_price":"1","quantity":0,"stock_at_add_time":4},
		{"product_id":%q,"unit_price":"-1","quantity":1,"stock_at_add_time":4},
		{"product_id":%q,"unit_price":"1","quantity":1,"stock_at_add_time":4}
	]}}}`, a, b, c, a)

	got, err := Decode([]byte(payload))
	require.NoError(t, err)
	lines := got.Get("x").Lines
	require.Len(t, lines, 1)
	assert.Equal(t, a, lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestDecode_ActiveFallsBackToExistingCart(t *testing.T) {
	got, err := Decode([]byte(`{"version":2,"active":"gone","carts":{"b":{"lines":[]},"a":{"lines":[]}}}`))
	require.NoError(t, err)
	assert.Equal(t, "a", got.Active)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{"version":3,"carts":{}}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Decode([]byte(`{"version":`))
	assert.ErrorIs(t, err, ErrMalformedDrafts)

	_, err = Decode([]byte(`{"version":0}`))
	assert.ErrorIs(t, err, ErrMalformedDrafts)
}

func TestDecode_Empty(t *testing.T) {
	got, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, NewDrafts(), got)
}

func TestDrafts_Without(t *testing.T) {
	d := NewDrafts().With("b", Cart{})
	d.Active = "b"

	d = d.Without("b")
	assert.Equal(t, DefaultName, d.Active)

	d = d.Without(DefaultName)
	assert.Equal(t, NewDrafts(), d)
}
