package debug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portstow/az/env/grid"
	"github.com/portstow/az/mcts"
)

func TestExportDOT_IncludesEveryNode(t *testing.T) {
	root := mcts.NewRoot(grid.New(2, 2, []byte{0, 0, 0, 0}))
	dot, err := ExportDOT(root)
	require.NoError(t, err)
	assert.Contains(t, dot, "root")
	assert.True(t, strings.Contains(dot, "digraph") || strings.Contains(dot, "strict"))
}
