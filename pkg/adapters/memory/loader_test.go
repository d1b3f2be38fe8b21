package memory_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	a := domain.NewGraph("alpha")
	loader, err := memory.NewLoader(a)
	require.NoError(t, err)

	got, err := loader.Load("alpha")
	require.NoError(t, err)
	assert.Same(t, a, got)

	loader.Register("beta", domain.NewGraph("beta"))
	assert.Equal(t, []string{"alpha", "beta"}, loader.Names())

	_, err = loader.Load("missing")
	assert.Error(t, err)
}

func TestLoader_RequiresName(t *testing.T) {
	_, err := memory.NewLoader(domain.NewGraph(""))
	assert.Error(t, err)
}
