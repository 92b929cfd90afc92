package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedGames(t *testing.T) {
	games := seedGames()
	require.NotEmpty(t, games)

	popular := 0
	for _, g := range games {
		if g.game.IsPopular {
			popular++
		}
		require.NotEmpty(t, g.categories, g.game.Name)
		for _, c := range g.categories {
			for _, p := range c.products {
				price, err := decimal.NewFromString(p.price)
				require.NoError(t, err, p.name)
				assert.True(t, price.IsPositive(), p.name)
				assert.LessOrEqual(t, p.rating, 5.0)
			}
		}
	}
	assert.Positive(t, popular)
}

func TestModelsCoverTables(t *testing.T) {
	assert.Len(t, Models(), 10)
}
