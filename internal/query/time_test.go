package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeRange_Empty(t *testing.T) {
	tr, err := ParseTimeRange("")
	assert.NoError(t, err)
	assert.Nil(t, tr)
}

func TestParseTimeRange_BareYear(t *testing.T) {
	tr, err := ParseTimeRange("1800")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 1800, tr.Start.Year())
	assert.Equal(t, 1800, tr.End.Year())
	assert.Equal(t, 12, int(tr.End.Month()))
	assert.Equal(t, 31, tr.End.Day())
}

func TestParseTimeRange_ToForm(t *testing.T) {
	tr, err := ParseTimeRange("2000 to 2010")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 2000, tr.Start.Year())
	assert.Equal(t, 2010, tr.End.Year())
}

func TestParseTimeRange_MissingBoundsDefault(t *testing.T) {
	tr, err := ParseTimeRange(" to 2010")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, minTime, tr.Start)
}

func TestTimeSelect_IndexOperator(t *testing.T) {
	op, err := TimeSelectStrict.IndexOperator()
	assert.NoError(t, err)
	assert.Equal(t, "Within", op)

	op, err = TimeSelectFile.IndexOperator()
	assert.NoError(t, err)
	assert.Equal(t, "Contains", op)

	_, err = TimeSelect("bogus").IndexOperator()
	assert.Error(t, err)
}

func FuzzParseTimeRange(f *testing.F) {
	f.Add("1800")
	f.Add("2000 to 2010")
	f.Add("")
	f.Add("not-a-date")
	f.Add("9999-12-31T23:59")

	f.Fuzz(func(t *testing.T, raw string) {
		assert.NotPanics(t, func() {
			_, _ = ParseTimeRange(raw)
		})
	})
}
