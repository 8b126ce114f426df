package foldertug

import (
	"testing"

	"github.com/filetug/foldertug/pkg/files/memfile"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func TestNameColorizer(t *testing.T) {
	c := nameColorizer{style: "dracula"}

	assert.Equal(t, dirColor, c.color(memfile.Dir("src")))
	assert.Equal(t, tcell.ColorAqua, c.color(memfile.File("main.go")))
	assert.Equal(t, tcell.ColorAqua, c.color(memfile.File("MAIN.GO")))
	assert.Equal(t, defaultColor, c.color(memfile.File("LICENSE")))

	lexed := c.color(memfile.File("Dockerfile"))
	assert.NotEqual(t, tcell.ColorDefault, lexed)
	assert.NotEqual(t, defaultColor, lexed)
}

func TestColorTag(t *testing.T) {
	assert.Equal(t, "#ff0000", colorTag(tcell.ColorRed))
	assert.Equal(t, "#000000", colorTag(tcell.NewRGBColor(0, 0, 0)))
}

func TestPlaceholderText(t *testing.T) {
	assert.Equal(t, "Loading...", placeholderText("filled"))
	assert.Contains(t, placeholderText("empty"), "No folder selected.")
}
