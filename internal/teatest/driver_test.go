package teatest

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type pingMsg struct{}

type counter struct {
	keys  int
	pings int
}

func (c *counter) Init() tea.Cmd { return func() tea.Msg { return pingMsg{} } }

func (c *counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pingMsg:
		c.pings++
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return c, tea.Quit
		case "b":
			return c, tea.Batch(
				func() tea.Msg { return pingMsg{} },
				func() tea.Msg { return pingMsg{} },
			)
		}
		c.keys++
	}
	return c, nil
}

func (c *counter) View() string { return "" }

func TestDriver_DrainsInitAndBatches(t *testing.T) {
	c := &counter{}
	d := New(t, c)
	assert.Equal(t, 1, c.pings)

	d.PressKey('b')
	assert.Equal(t, 3, c.pings)

	d.PressKey('x')
	d.PressEnter()
	assert.Equal(t, 2, c.keys)
}

func TestDriver_QuitStopsDelivery(t *testing.T) {
	c := &counter{}
	d := New(t, c)

	d.PressKey('q')
	assert.True(t, d.Quitting)

	d.PressKey('x')
	assert.Equal(t, 0, c.keys)
}
