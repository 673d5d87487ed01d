package model

import (
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"CatalogInfo", &CatalogInfo{}, "catalog_infos"},
		{"Location", &Location{}, "locations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels(t *testing.T) {
	assert.Len(t, DatabaseModels, 2)
}

func TestWebMercator_ValueScan(t *testing.T) {
	in := WebMercator{geom.XY{X: 8890000, Y: 772000}.AsPoint()}

	v, err := in.Value()
	require.NoError(t, err)
	require.IsType(t, []byte(nil), v)

	var out WebMercator
	require.NoError(t, out.Scan(v))
	xy, ok := out.XY()
	require.True(t, ok)
	assert.Equal(t, 8890000.0, xy.X)
	assert.Equal(t, 772000.0, xy.Y)
}

func TestWebMercator_Empty(t *testing.T) {
	v, err := WebMercator{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	out := WebMercator{geom.XY{X: 1, Y: 2}.AsPoint()}
	require.NoError(t, out.Scan(nil))
	assert.True(t, out.IsEmpty())
}
