package foldertug

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/filetug/foldertug/pkg/chroma2tcell"
	"github.com/filetug/foldertug/pkg/files"
	"github.com/gdamore/tcell/v2"
)

var fileColors = map[string]tcell.Color{
	"exe":  tcell.ColorRed,
	"go":   tcell.ColorAqua,
	"c":    tcell.ColorDodgerBlue,
	"h":    tcell.ColorDodgerBlue,
	"cpp":  tcell.ColorDodgerBlue,
	"js":   tcell.ColorYellow,
	"ts":   tcell.ColorDeepSkyBlue,
	"html": tcell.ColorOrangeRed,
	"css":  tcell.ColorViolet,
	"json": tcell.ColorGold,
	"yaml": tcell.ColorLightYellow,
	"yml":  tcell.ColorLightYellow,
	"md":   tcell.ColorBisque,
	"py":   tcell.ColorLightGreen,
	"rs":   tcell.ColorOrange,
	"sh":   tcell.ColorGreen,
	"txt":  tcell.ColorWhite,
	"csv":  tcell.ColorLightGreen,
	"jpg":  tcell.ColorMediumPurple,
	"jpeg": tcell.ColorMediumPurple,
	"png":  tcell.ColorMediumPurple,
	"gif":  tcell.ColorMediumPurple,
	"mov":  tcell.ColorLightSalmon,
	"mp4":  tcell.ColorLightSalmon,
	"log":  tcell.ColorRosyBrown,
}

const (
	dirColor     = tcell.ColorCornflowerBlue
	defaultColor = tcell.ColorWhiteSmoke
)

// nameColorizer picks entry colors: directories, then known extensions,
// then any file chroma has a lexer for, in the style's function color.
type nameColorizer struct {
	style string
}

func (c nameColorizer) color(h files.Handle) tcell.Color {
	if h.IsDir() {
		return dirColor
	}
	name := h.Name()
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if color, ok := fileColors[ext]; ok {
		return color
	}
	if _, ok := chroma2tcell.SourceLanguage(name); ok {
		if color := chroma2tcell.TokenColor(c.style, chroma.NameFunction); color != tcell.ColorDefault {
			return color
		}
	}
	return defaultColor
}
