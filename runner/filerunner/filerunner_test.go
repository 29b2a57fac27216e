package filerunner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadQueries(t *testing.T) {
	t.Parallel()

	input := strings.NewReader(`
coffee berlin

# a comment
  pizza rome
`)

	queries, err := readQueries(input)
	require.NoError(t, err)
	require.Equal(t, []string{"coffee berlin", "pizza rome"}, queries)
}

func TestReadQueries_Empty(t *testing.T) {
	t.Parallel()

	queries, err := readQueries(strings.NewReader("\n# only comments\n"))
	require.NoError(t, err)
	require.Empty(t, queries)
}
