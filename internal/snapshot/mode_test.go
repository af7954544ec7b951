package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMode_String(t *testing.T) {
	require.Equal(t, "NORMAL", ModeNormal.String())
	require.Equal(t, "INSERT", ModeInsert.String())
	require.Equal(t, "VISUAL", ModeVisual.String())
	require.Equal(t, "UNKNOWN", Mode(42).String())
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"normal", ModeNormal},
		{"NORMAL", ModeNormal},
		{"n", ModeNormal},
		{"insert", ModeInsert},
		{"i", ModeInsert},
		{"Visual", ModeVisual},
		{"v", ModeVisual},
	}
	for _, c := range cases {
		got, err := ParseMode(c.in)
		require.NoError(t, err, "ParseMode(%q)", c.in)
		require.Equal(t, c.want, got, "ParseMode(%q)", c.in)
	}
}

func TestParseMode_Unknown(t *testing.T) {
	_, err := ParseMode("replace")
	require.Error(t, err)
	require.Contains(t, err.Error(), "replace")
}

func TestSnapshotError(t *testing.T) {
	err := NewSnapshotError(ErrCategoryInput, "bad range").WithHelpText("use start:end")
	require.Equal(t, "bad range", err.Error())
	require.Equal(t, ErrCategoryInput, err.Category)
	require.Equal(t, "use start:end", err.HelpText)
	require.Equal(t, "Invalid Input", err.Category.String())
	require.Equal(t, "Render Error", ErrCategoryRender.String())
}
