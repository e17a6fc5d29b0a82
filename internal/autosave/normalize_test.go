package autosave_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/autosave"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty stays empty", "", ""},
		{"plain text unchanged", "Replace pump", "Replace pump"},
		{"trailing newlines trimmed", "Replace pump\n\n", "Replace pump"},
		{"trailing spaces inside lines trimmed", "line one   \nline two", "line one\nline two"},
		{"empty paragraph residue", "<p></p>", ""},
		{"self-closing break residue", "<br/>\n<br>", ""},
		{"nbsp-only residue", "&nbsp;  ", ""},
		{"mixed residue", "<p>&nbsp;</p>\n<div></div>", ""},
		{"residue around content kept", "<p>Check valve</p>", "<p>Check valve</p>"},
		{"nbsp inside content becomes space", "a&nbsp;b", "a b"},
		{"whitespace only", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, autosave.Normalize(tt.in))
		})
	}
}

func TestHasContent(t *testing.T) {
	require.False(t, autosave.HasContent(""))
	require.False(t, autosave.HasContent("<p></p>"))
	require.False(t, autosave.HasContent("  \n"))
	require.True(t, autosave.HasContent("Inspect weekly"))
}
