package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleTwiceRestores(t *testing.T) {
	for _, start := range []Theme{{Mode: ModeLight}, {Mode: ModeDark}} {
		assert.Equal(t, start, start.Toggle().Toggle())
		assert.NotEqual(t, start, start.Toggle())
	}
}

func TestInitial(t *testing.T) {
	dark := Theme{Mode: ModeDark}

	assert.Equal(t, dark, Initial(&dark, ModeLight))
	assert.Equal(t, dark, Initial(nil, ModeDark))
	assert.Equal(t, Light(), Initial(&Theme{Mode: "sepia"}, ""))
	assert.Equal(t, Light(), Initial(nil, ""))
}

func TestVariables(t *testing.T) {
	vars := Variables(Theme{Mode: ModeDark}, Params{BgColor: "#101010"})

	assert.Equal(t, "dark", vars["data-theme"])
	assert.Equal(t, "#101010", vars["--tg-theme-bg-color"])
	assert.Equal(t, "#2481cc", vars["--tg-theme-button-color"])
}
