package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorHelpersWrapWithANSICodes(t *testing.T) {
	assert.Equal(t, "\033[31mboom\033[0m", Red("boom"))
	assert.Equal(t, "\033[32mdone\033[0m", Green("done"))
	assert.Equal(t, "\033[36mlabel\033[0m", Cyan("label"))
	assert.Equal(t, "\033[33mvalue\033[0m", Yellow("value"))
	assert.Equal(t, "\033[35mhey\033[0m", Magenta("hey"))
	assert.Equal(t, "\033[2mfaint\033[0m", Dim("faint"))
}

func TestLogoRowsAligned(t *testing.T) {
	lines := strings.Split(strings.Trim(ASCIILogo, "\n"), "\n")
	assert.Len(t, lines, 7)

	width := len([]rune(lines[0]))
	for i, line := range lines {
		assert.Equal(t, width, len([]rune(line)), "line %d", i)
	}
}
