package postgis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCollection(t *testing.T) {
	require.NoError(t, ValidateCollection(testCollection()))

	t.Run("schema qualified table", func(t *testing.T) {
		c := testCollection()
		c.Table = "public.naturalearth_lowres"
		assert.NoError(t, ValidateCollection(c))
	})

	t.Run("no properties", func(t *testing.T) {
		c := testCollection()
		c.Properties = nil
		assert.NoError(t, ValidateCollection(c))
	})

	t.Run("broken identifier", func(t *testing.T) {
		c := testCollection()
		c.IDColumn = "ogc fid"
		assert.Error(t, ValidateCollection(c))
	})

	t.Run("injected statement", func(t *testing.T) {
		c := testCollection()
		c.Table = "naturalearth_lowres; DROP TABLE naturalearth_lowres"
		assert.Error(t, ValidateCollection(c))
	})
}

func TestValidateSelect(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{"select", "SELECT 1", false},
		{"syntax error", "SELEC 1", true},
		{"not a select", "DELETE FROM t", true},
		{"two statements", "SELECT 1; SELECT 2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelect(tt.sql)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCollectionQueries(t *testing.T) {
	qs := CollectionQueries(testCollection())
	assert.Len(t, qs, 5)
	assert.Contains(t, qs["list_bbox"].SQL, "ST_MakeEnvelope($1, $2, $3, $4, 4326)")
	assert.Len(t, qs["count_bbox"].Args, 5)
}
