package sheets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{
		0:   "A",
		2:   "C",
		25:  "Z",
		26:  "AA",
		27:  "AB",
		51:  "AZ",
		52:  "BA",
		701: "ZZ",
		702: "AAA",
	}

	for idx, want := range tests {
		require.Equal(t, want, columnLetter(idx), idx)
	}
}

func TestFirstRow(t *testing.T) {
	n, err := firstRow("'claims'!A5:M5")
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = firstRow("claims!$A$12")
	require.NoError(t, err)
	require.Equal(t, 12, n)

	_, err = firstRow("'claims'!A1:M1")
	require.ErrorIs(t, err, ErrBadRange)

	_, err = firstRow("")
	require.ErrorIs(t, err, ErrBadRange)
}
