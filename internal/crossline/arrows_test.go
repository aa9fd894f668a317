package crossline

import (
	"testing"

	"github.com/enixma/dashboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrows_Forward(t *testing.T) {
	arrows := Arrows([]core.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, true)
	require.Len(t, arrows, 1)

	// horizontal left-to-right line: the arrow hangs below the midpoint
	a := arrows[0]
	assert.InDelta(t, 35.0, a[0].X, 1e-9)
	assert.InDelta(t, 15.0, a[0].Y, 1e-9)
	assert.InDelta(t, 50.0, a[1].X, 1e-9)
	assert.InDelta(t, 30.0, a[1].Y, 1e-9)
	assert.InDelta(t, 65.0, a[2].X, 1e-9)
	assert.InDelta(t, 15.0, a[2].Y, 1e-9)
}

func TestArrows_ReversedPointsOtherWay(t *testing.T) {
	pts := []core.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 0}}
	fwd := Arrows(pts, true)
	rev := Arrows(pts, false)
	require.Len(t, rev, 2)

	for i := range fwd {
		assert.InDelta(t, -fwd[i][1].Y, rev[i][1].Y, 1e-9)
		assert.InDelta(t, fwd[i][1].X, rev[i][1].X, 1e-9)
	}
}

func TestArrows_TooShort(t *testing.T) {
	assert.Nil(t, Arrows(nil, true))
	assert.Nil(t, Arrows([]core.Point{{X: 1, Y: 1}}, false))
}
