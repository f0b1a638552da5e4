package utils

import (
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketCodeFormat(t *testing.T) {
	code, err := GenerateTicketCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^PV-[0-9a-f]{10}$`), code)
}

func TestGenerateTicketCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := GenerateTicketCode()
		require.NoError(t, err)
		require.False(t, seen[code], "duplicate ticket code %s", code)
		seen[code] = true
	}
}

func TestEncodeQRDataURL(t *testing.T) {
	url, err := EncodeQRDataURL(map[string]string{"bookingId": "b-1"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}

func TestParseClockMinutes(t *testing.T) {
	min, err := ParseClockMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, min)

	_, err = ParseClockMinutes("25:00")
	assert.Error(t, err)
	_, err = ParseClockMinutes("9am")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-09-05")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-05", d.Format(DateLayout))

	_, err = ParseDate("05/09/2026")
	assert.Error(t, err)
}
