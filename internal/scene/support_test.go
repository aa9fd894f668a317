package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanes(t *testing.T) {
	l := NewLanes(map[string]int{"first": 2})

	n, ok := l.Lanes("first")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = l.Lanes("second")
	assert.False(t, ok)

	assert.Equal(t, 4, l.SetText("second", " 4 "))
	assert.Equal(t, 1, l.SetText("second", "abc"))
	assert.Equal(t, 1, l.SetText("second", "0"))
	n, _ = l.Lanes("second")
	assert.Equal(t, 1, n)
}

func TestPanels(t *testing.T) {
	p := NewPanels()
	var seen []Panel
	p.Subscribe(func(panel Panel) { seen = append(seen, panel) })

	p.CrosslinePresence("first", true, 2)
	p.AreaPresence("second", true)
	p.AreaPresence("first", true)
	p.AreaPresence("first", false)

	assert.Len(t, seen, 4)
	assert.Equal(t, []Panel{
		{Kind: PanelArea, Name: "first"},
		{Kind: PanelArea, Name: "second", Present: true},
		{Kind: PanelCrossline, Name: "first", Present: true, Lanes: 2},
	}, p.All())
}
