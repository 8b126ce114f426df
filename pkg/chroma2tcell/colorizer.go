// Package chroma2tcell renders chroma tokens as tview color tags and maps
// chroma colours to tcell colors.
package chroma2tcell

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/rivo/tview"
)

const DefaultStyle = "dracula"

var getStyle = styles.Get

var getFallbackStyle = func() *chroma.Style {
	return styles.Fallback
}

func style(name string) *chroma.Style {
	if s := getStyle(name); s != nil {
		return s
	}
	return getFallbackStyle()
}

// Colorize tokenizes text with lexer and wraps every styled token in a
// tview color tag. Token text is escaped so brackets survive rendering.
func Colorize(text, styleName string, lexer chroma.Lexer) (string, error) {
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", errors.Wrap(err, "failed to tokenise")
	}
	s := style(styleName)

	var sb strings.Builder
	for _, token := range iterator.Tokens() {
		value := tview.Escape(token.Value)
		entry := s.Get(token.Type)
		if entry.IsZero() || !entry.Colour.IsSet() {
			sb.WriteString(value)
			continue
		}
		sb.WriteString("[" + entry.Colour.String() + "]")
		sb.WriteString(value)
		sb.WriteString("[-]")
	}
	return sb.String(), nil
}

// ColorizeYAML colorizes a YAML document, falling back to plain text when
// no YAML lexer is registered.
func ColorizeYAML(yamlStr string, getLexer func(string) chroma.Lexer) (string, error) {
	lexer := getLexer("yaml")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return Colorize(yamlStr, DefaultStyle, lexer)
}

// ToTcell converts a chroma colour. Unset colours map to tcell.ColorDefault.
func ToTcell(c chroma.Colour) tcell.Color {
	if !c.IsSet() {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
}

// TokenColor is the foreground color styleName gives to tokens of type tt.
func TokenColor(styleName string, tt chroma.TokenType) tcell.Color {
	return ToTcell(style(styleName).Get(tt).Colour)
}

// SourceLanguage returns the name of the lexer matching fileName, if any.
func SourceLanguage(fileName string) (string, bool) {
	lexer := lexers.Match(fileName)
	if lexer == nil || lexer.Config() == nil {
		return "", false
	}
	return lexer.Config().Name, true
}
