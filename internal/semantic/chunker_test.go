package semantic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_BoundaryClose(t *testing.T) {
	content := `package auth

import "errors"

var errBad = errors.New("bad")

// Login validates credentials.
func Login(user string) error {
	if user == "" {
		return errBad
	}
	return nil
}

func Logout(user string) error {
	return nil
}`

	chunks := Split("auth.go", content, 0)
	require.NotEmpty(t, chunks)

	// The second func starts a new chunk once the minimum line count has
	// accumulated.
	assert.Greater(t, len(chunks), 1)
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasPrefix(strings.TrimSpace(last.Content), "func Logout"))
}

func TestSplit_PartitionsFile(t *testing.T) {
	content := strings.Repeat("line of code here\n", 50) + "end"
	chunks := Split("big.txt", content, 200)

	require.NotEmpty(t, chunks)

	// Chunks tile the file: contiguous, no gaps, no overlaps.
	next := 0
	for _, c := range chunks {
		assert.Equal(t, next, c.StartLine)
		assert.LessOrEqual(t, c.StartLine, c.EndLine)
		assert.Equal(t, "big.txt", c.File)
		next = c.EndLine + 1
	}
	assert.Equal(t, len(strings.Split(content, "\n")), next)
}

func TestSplit_CharCap(t *testing.T) {
	content := strings.Repeat("x", 250) + "\n" + strings.Repeat("y", 250) + "\n" + strings.Repeat("z", 250)
	chunks := Split("wide.txt", content, 200)

	require.Len(t, chunks, 3, "each long line overflows the cap on its own")
	for _, c := range chunks {
		assert.Equal(t, c.StartLine, c.EndLine)
	}
}

func TestSplit_EmptyAndBlank(t *testing.T) {
	assert.Empty(t, Split("empty.txt", "", 0))
	assert.Empty(t, Split("blank.txt", "\n\n   \n", 0), "whitespace-only chunks are dropped")
}

func TestSplit_SingleSmallFile(t *testing.T) {
	content := "func main() {\n\tprintln(1)\n}"
	chunks := Split("main.go", content, 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].StartLine)
	assert.Equal(t, 2, chunks[0].EndLine)
	assert.Equal(t, content, chunks[0].Content)
}

func TestSplit_LanguageBoundaries(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"go func", "func Login() {"},
		{"go type", "type Session struct {"},
		{"rust fn", "pub fn login() {"},
		{"rust impl", "impl Session {"},
		{"python def", "def login(user):"},
		{"python class", "class Session:"},
		{"ts export function", "export function login() {"},
		{"ts async", "export async function login() {"},
		{"ts interface", "interface User {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, boundaryRe.MatchString(tt.line), "%q should be a boundary", tt.line)
		})
	}

	assert.False(t, boundaryRe.MatchString("\treturn functional(x)"))
	assert.False(t, boundaryRe.MatchString("// a func comment mention"))
}
