package sales

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "two decimals", input: "11.95", want: "11.95"},
		{name: "integer", input: "1700", want: "1700"},
		{name: "surrounding spaces", input: "  2.99 ", want: "2.99"},
		{name: "empty", input: "", wantErr: true},
		{name: "text", input: "Price Each", wantErr: true},
		{name: "nan", input: "NaN", wantErr: true},
		{name: "infinity", input: "Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidMoney)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("0.10")
	b := MustMoney("0.20")

	// 0.1 + 0.2 is exact, unlike float64
	assert.Equal(t, 0, a.Add(b).Cmp(MustMoney("0.30")))
	assert.Equal(t, "35.85", MustMoney("11.95").MulInt(3).String())
	assert.Equal(t, 0, MustMoney("10").DivInt(4).Cmp(MustMoney("2.5")))
	assert.True(t, MustMoney("10").DivInt(0).IsZero())
	assert.Equal(t, -1, a.Sub(b).Sign())
	assert.InDelta(t, 0.5, a.Ratio(b), 1e-12)
	assert.Zero(t, a.Ratio(Money{}))
	assert.Equal(t, "0.60", Sum(a, b, b, a.Sub(a), a).StringFixed(2))
}

func TestMoney_Round(t *testing.T) {
	assert.Equal(t, "3.33", MoneyFromInt(10).DivInt(3).StringFixed(2))
	assert.Equal(t, "3.3333", MoneyFromInt(10).DivInt(3).String())
	assert.Equal(t, "0.6667", MoneyFromInt(2).DivInt(3).String())
	assert.Equal(t, "0.13", MustMoney("0.125").StringFixed(2))
	assert.Equal(t, "30.00", MustMoney("30").StringFixed(2))
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: MustMoney("1700")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 1700.00}`, string(data))

	var decoded struct {
		Amount Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 12.5}`), &decoded))
	assert.Equal(t, 0, decoded.Amount.Cmp(MustMoney("12.50")))

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "3.99"}`), &decoded))
	assert.Equal(t, "3.99", decoded.Amount.String())
}

// Cached responses are stored as JSON, so a decoded value must equal the one
// that was encoded.
func TestMoney_JSONIsExact(t *testing.T) {
	type row struct {
		UnitPrice Money `json:"unit_price"`
		Mean      Money `json:"mean"`
	}
	original := row{
		UnitPrice: MustMoney("3.845"),
		Mean:      MustMoney("3215.85").DivInt(7),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `{"unit_price":3.845,"mean":459.4071}`, string(data))

	var decoded row
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0, decoded.UnitPrice.Cmp(original.UnitPrice))
	assert.Equal(t, 0, decoded.Mean.Cmp(original.Mean))

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("11.99"))
	assert.Equal(t, "11.99", m.String())

	require.NoError(t, m.Scan(int64(5)))
	assert.Equal(t, "5", m.String())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(true))

	v, err := MustMoney("2.50").Value()
	require.NoError(t, err)
	assert.Equal(t, "2.50", v)
}
