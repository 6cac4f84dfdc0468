package rules

import (
	"testing"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{`\.tsx$`, "./a.tsx", true},
		{`\.tsx$`, "./a.ts", false},
		{`/node_modules/`, "./node_modules/x.js", true},
		{`/node_modules/`, "./src/x.js", false},
		{`/\.PNG$/i`, "logo.png", true},
		{`/\.PNG$/`, "logo.png", false},
		{`/^b/m`, "a\nb", true},
		{`/a.b/s`, "a\nb", true},
		{`/\.js$/g`, "x.js", true},
		{`\.(png|jpg)(\?.+)?$`, "x.png?size=2", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := CompilePattern(tt.pattern)
			require.NoError(t, err)
			got, err := re.MatchString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitLiteral(t *testing.T) {
	body, flags := splitLiteral("/abc/gi")
	assert.Equal(t, "abc", body)
	assert.Equal(t, "gi", flags)

	body, flags = splitLiteral("/")
	assert.Equal(t, "/", body)
	assert.Empty(t, flags)

	body, flags = splitLiteral("/src/app")
	assert.Equal(t, "/src/app", body)
	assert.Empty(t, flags)
}

func TestCompilePatternInvalid(t *testing.T) {
	_, err := CompilePattern(`(`)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))
	assert.Equal(t, `(`, errors.GetErrorDetails(err)["pattern"])
}
