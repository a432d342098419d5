package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultReaderOptions(t *testing.T) {
	o := DefaultReaderOptions()
	assert.Equal(t, DefaultRowSize, o.RowSize)
	assert.Equal(t, time.UTC, o.StorageTimeZone)
	assert.Equal(t, time.UTC, o.SessionTimeZone)
}

func TestApplyWithRowSizeClampsToBounds(t *testing.T) {
	o := Apply(WithRowSize(0))
	assert.Equal(t, MinRowSize, o.RowSize)

	o = Apply(WithRowSize(MaxRowSize + 1))
	assert.Equal(t, MaxRowSize, o.RowSize)

	o = Apply(WithRowSize(500))
	assert.Equal(t, 500, o.RowSize)
}

func TestApplyWithTimeZones(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skip("tzdata not available")
	}
	o := Apply(WithStorageTimeZone(la), WithSessionTimeZone(la))
	assert.Equal(t, la, o.StorageTimeZone)
	assert.Equal(t, la, o.SessionTimeZone)
}

func TestApplyNoOptionsMatchesDefaults(t *testing.T) {
	assert.Equal(t, DefaultReaderOptions(), Apply())
}
