package charts

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashlab/domain/table"
)

func TestSpecJSON(t *testing.T) {
	s := New([]map[string]any{{"x": 1.0, "y": 2.0}})
	s.Mark = &Mark{Type: "line", Point: true}
	s.Encoding = &Encoding{
		X: &Field{Field: "x", Type: Quantitative},
		Y: &Field{Field: "y", Type: Quantitative},
	}

	js, err := s.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(js), &decoded))
	assert.Equal(t, schemaURL, decoded["$schema"])
	assert.Equal(t, "container", decoded["width"])
	mark := decoded["mark"].(map[string]any)
	assert.Equal(t, "line", mark["type"])
	assert.Equal(t, true, mark["point"])
	// Empty channels stay out of the payload.
	_, hasColor := decoded["encoding"].(map[string]any)["color"]
	assert.False(t, hasColor)
}

func TestLayeredSharesData(t *testing.T) {
	values := []map[string]any{{"v": 1.0}}
	a := New(values)
	a.Mark = &Mark{Type: "line"}
	b := New(values)
	b.Mark = &Mark{Type: "rule"}

	layered := Layered(values, a, b)

	js, err := layered.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(js), &decoded))
	layers := decoded["layer"].([]any)
	require.Len(t, layers, 2)
	for _, raw := range layers {
		layer := raw.(map[string]any)
		_, hasData := layer["data"]
		assert.False(t, hasData, "layers inherit the shared data block")
		_, hasSchema := layer["$schema"]
		assert.False(t, hasSchema)
	}
}

func TestRecordsMissingValues(t *testing.T) {
	tbl := table.New()
	tbl.AddStrings("city", []string{"Kent", "Renton"})
	tbl.AddNumbers("price", []float64{450000, math.NaN()})
	tbl.AddTimes("sold", []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		{},
	})

	recs := Records(tbl)
	require.Len(t, recs, 2)
	assert.Equal(t, 450000.0, recs[0]["price"])
	assert.Equal(t, "2024-03-01T00:00:00Z", recs[0]["sold"])
	assert.Nil(t, recs[1]["price"])
	assert.Nil(t, recs[1]["sold"])
}

func TestMatrixRecordsSkipsMissing(t *testing.T) {
	m := &table.Matrix{
		Index: []time.Time{
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		Columns: []string{"Kent", "Renton"},
		Data: [][]float64{
			{100, 101},
			{102, math.NaN()},
		},
	}

	recs := MatrixRecords(m, "month", "city", "index")
	require.Len(t, recs, 3)
	assert.Equal(t, "Kent", recs[2]["city"])
	assert.Equal(t, 102.0, recs[2]["index"])
}

func TestCorrRecords(t *testing.T) {
	c := &table.CorrResult{
		Labels: []string{"Kent", "Renton"},
		Values: [][]float64{{1, 0.8}, {0.8, 1}},
	}

	recs := CorrRecords(c)
	require.Len(t, recs, 4)
	assert.Equal(t, "Kent", recs[1]["city1"])
	assert.Equal(t, "Renton", recs[1]["city2"])
	assert.Equal(t, 0.8, recs[1]["correlation"])
}
