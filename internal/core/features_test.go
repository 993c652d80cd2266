package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() RawFields {
	return RawFields{
		FieldCreditScore:  "650",
		FieldGender:       "1",
		FieldAge:          "35",
		FieldBalance:      "50000.0",
		FieldHasCard:      "1",
		FieldTenure:       "5",
		FieldActiveMember: "1",
		FieldSalary:       "60000",
		FieldCountry:      "DEU",
	}
}

func TestEncodeFeatureOrder(t *testing.T) {
	rec, err := Encode(validFields())
	require.NoError(t, err)

	assert.Equal(t, []float64{650, 0, 35, 50000.0, 3, 1, 5, 1, 60000, 0, 1, 0}, rec.Vector())
	assert.Len(t, rec.Vector(), NumFeatures)
}

func TestEncodeIsDeterministic(t *testing.T) {
	first, err := Encode(validFields())
	require.NoError(t, err)
	second, err := Encode(validFields())
	require.NoError(t, err)

	a, err := json.Marshal(first.Vector())
	require.NoError(t, err)
	b, err := json.Marshal(second.Vector())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeCountryOneHot(t *testing.T) {
	for country, expected := range map[string][3]float64{
		"FRA": {1, 0, 0},
		"DEU": {0, 1, 0},
		"ESP": {0, 0, 1},
		"GBR": {0, 0, 0},
		"fra": {0, 0, 0},
	} {
		t.Run(country, func(t *testing.T) {
			raw := validFields()
			raw[FieldCountry] = country

			rec, err := Encode(raw)
			require.NoError(t, err)
			assert.Equal(t, expected, [3]float64{rec.IsFrance, rec.IsGermany, rec.IsSpain})
		})
	}
}

func TestEncodeUntypedValues(t *testing.T) {
	raw := RawFields{
		FieldCreditScore:  float64(700),
		FieldGender:       "Male",
		FieldAge:          json.Number("41"),
		FieldBalance:      0,
		FieldHasCard:      true,
		FieldTenure:       int64(2),
		FieldActiveMember: "0",
		FieldSalary:       " 1234.5 ",
		FieldCountry:      "FRA",
		FieldProducts:     "2",
	}

	rec, err := Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{700, 1, 41, 0, 2, 1, 2, 0, 1234.5, 1, 0, 0}, rec.Vector())
}

func TestEncodeGender(t *testing.T) {
	for token, expected := range map[string]float64{
		"1":      0,
		"0":      1,
		"Female": 0,
		"female": 0,
		"MALE":   1,
	} {
		raw := validFields()
		raw[FieldGender] = token
		rec, err := Encode(raw)
		require.NoError(t, err)
		assert.Equal(t, expected, rec.Gender, "gender token %q", token)
	}
}

func TestEncodeMissingFields(t *testing.T) {
	raw := validFields()
	raw[FieldAge] = ""
	raw[FieldSalary] = nil
	delete(raw, FieldCountry)

	_, err := Encode(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingInput)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, []string{FieldAge, FieldSalary, FieldCountry}, fieldErr.Missing)
}

func TestEncodeMalformedNumber(t *testing.T) {
	for _, value := range []any{"abc", "-5", "NaN", "Inf"} {
		raw := validFields()
		raw[FieldBalance] = value

		_, err := Encode(raw)
		require.Error(t, err, "value %v", value)
		assert.ErrorIs(t, err, ErrMalformedInput)

		var fieldErr *FieldError
		require.True(t, errors.As(err, &fieldErr))
		assert.Equal(t, FieldBalance, fieldErr.Field)
	}
}

func TestEncodeMalformedProducts(t *testing.T) {
	raw := validFields()
	raw[FieldProducts] = "two"

	_, err := Encode(raw)
	assert.ErrorIs(t, err, ErrMalformedInput)
}
