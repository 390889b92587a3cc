package validation

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/feed"
	"feedsync/internal/logger"
	"feedsync/internal/transform"
)

func newValidator() *Validator {
	l := logger.New("error")
	l.SetOutput(io.Discard)
	return New(l)
}

func TestValidateRecordComplete(t *testing.T) {
	warnings, err := newValidator().ValidateRecord(feed.NewRecord(map[string]string{
		"id": "A1", "title": "Shoe", "price": "10.00 USD", "availability": "in stock",
	}))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateRecordGaps(t *testing.T) {
	warnings, err := newValidator().ValidateRecord(feed.NewRecord(map[string]string{
		"g:id": "A1", "price": "free",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"missing title", "missing availability", "unparsable price"}, warnings)
}

func TestValidateRecordWithoutSKU(t *testing.T) {
	_, err := newValidator().ValidateRecord(feed.NewRecord(map[string]string{"title": "Shoe"}))
	assert.ErrorIs(t, err, transform.ErrMissingSKU)
}

func TestValidateVariations(t *testing.T) {
	v := newValidator()
	warnings, err := v.ValidateVariations([]feed.Record{
		feed.NewRecord(map[string]string{"id": "A1-R", "title": "Red", "price": "1", "availability": "3"}),
		feed.NewRecord(map[string]string{"id": "A1-B", "title": "Blue", "availability": "3"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1-B: missing price"}, warnings)

	_, err = v.ValidateVariations([]feed.Record{feed.NewRecord(map[string]string{"title": "x"})})
	assert.ErrorIs(t, err, transform.ErrMissingSKU)
}
