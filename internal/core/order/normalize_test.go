package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"two items", []string{"Apple", "Banana"}, "Apple, Banana"},
		{"trailing nbsp", []string{"Apple\u00a0"}, "Apple"},
		{"inner nbsp kept as one token", []string{"Apple ", "  Banana\u00a0Kiwi"}, "Apple, Banana Kiwi"},
		{"whitespace runs", []string{"Dragon \t\u202f Fruit", "Ugli\u2007\u2007Fruit"}, "Dragon Fruit, Ugli Fruit"},
		{"ideographic and zero width", []string{"\u3000Kiwi\u200b"}, "Kiwi"},
		{"empty items dropped", []string{"", "  ", "Mango"}, "Mango"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := [][]string{
		{"Apples", "Dragon Fruit", "Kiwi"},
		{" Ziziphus\u00a0 Jujube ", "Figs"},
		{"Ugli Fruit"},
		{"Lime,Mint", "Kiwi"},
		{"Apples,", ",Kiwi"},
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(Split(once)), "input %q", in)
	}
}

func TestSplitRoundTripPreservesOrder(t *testing.T) {
	sel := []string{"Strawberries", "Dragon Fruit", "Apples", "Yerba Mate"}
	assert.Equal(t, sel, Split(Normalize(sel)))
}

func TestSplitKeepsBareCommas(t *testing.T) {
	assert.Equal(t, []string{"Apples,Kiwi"}, Split("Apples,Kiwi"))
	assert.Equal(t, []string{"Lime,Mint", "Kiwi"}, Split("Lime,Mint, Kiwi"))
	assert.Equal(t, []string{"Apples", "Kiwi"}, Split("Apples, Kiwi, "))
	assert.Empty(t, Split(""))
}
