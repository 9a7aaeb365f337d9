package shipping

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCEP(t *testing.T) {
	require.Equal(t, "01310100", NormalizeCEP("01310-100"))
	require.Equal(t, "01310100", NormalizeCEP(" 01.310-100 "))
	require.Equal(t, "", NormalizeCEP("abc"))
}

func TestCEPValueRejectsWrongLength(t *testing.T) {
	_, err := CEPValue("1310100")
	require.Error(t, err)

	v, err := CEPValue("01310-100")
	require.NoError(t, err)
	require.EqualValues(t, 1310100, v)
}

func TestCEPInRangeInclusive(t *testing.T) {
	for _, cep := range []string{"01000-000", "01500000", "01999-999"} {
		in, err := CEPInRange(cep, "01000000", "01999999")
		require.NoError(t, err)
		require.True(t, in, "%s must fall inside the range", cep)
	}
	in, err := CEPInRange("02000000", "01000000", "01999999")
	require.NoError(t, err)
	require.False(t, in)
}

func TestValidateCEPRange(t *testing.T) {
	require.NoError(t, ValidateCEPRange("01000-000", "01999-999"))

	err := ValidateCEPRange("01999999", "01000000")
	require.ErrorIs(t, err, ErrMalformedCEPRange)

	err = ValidateCEPRange("123", "01999999")
	require.ErrorIs(t, err, ErrMalformedCEPRange)
}
