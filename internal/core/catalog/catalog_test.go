package catalog

import (
	"context"
	"testing"

	"smoothie-order/internal/pkg/common"
	"smoothie-order/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCatalogPreservesStoreOrder(t *testing.T) {
	s := testutil.OpenTestStore(t)

	c, err := NewReader().FetchCatalog(context.Background(), s.DB())
	require.NoError(t, err)
	require.Len(t, c, 25)

	assert.Equal(t, "Apples", c[0].DisplayName)
	require.NotNil(t, c[0].LookupKey)
	assert.Equal(t, "Apple", *c[0].LookupKey)
	assert.Equal(t, "Ziziphus Jujube", c[len(c)-1].DisplayName)

	kiwi, ok := c.Find("Kiwi")
	require.True(t, ok)
	assert.Nil(t, kiwi.LookupKey)
}

func TestFetchCatalogUnavailable(t *testing.T) {
	s := testutil.OpenTestStore(t)
	require.NoError(t, s.Close())

	_, err := NewReader().FetchCatalog(context.Background(), s.DB())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
}

func TestResolveLookupKey(t *testing.T) {
	tests := []struct {
		name   string
		option FruitOption
		want   string
	}{
		{"explicit key", FruitOption{DisplayName: "Apples", LookupKey: testutil.StrPtr("Apple")}, "Apple"},
		{"null key", FruitOption{DisplayName: "Kiwi"}, "kiwi"},
		{"blank key", FruitOption{DisplayName: "Mango", LookupKey: testutil.StrPtr("  ")}, "mango"},
		{"padded key", FruitOption{DisplayName: "Figs", LookupKey: testutil.StrPtr(" Fig ")}, "Fig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.option.ResolveLookupKey())
		})
	}
}

func TestCatalogHelpers(t *testing.T) {
	c := Catalog{
		{DisplayName: "Apples", LookupKey: testutil.StrPtr("Apple")},
		{DisplayName: "Kiwi"},
	}
	assert.Equal(t, []string{"Apples", "Kiwi"}, c.Names())
	assert.True(t, c.Contains("Kiwi"))
	assert.False(t, c.Contains("kiwi"))
	assert.Equal(t, "Apple", c.LookupKeyFor("Apples"))
	assert.Equal(t, "unobtainium", c.LookupKeyFor("Unobtainium"))
}
