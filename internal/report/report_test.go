package report

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweeper/internal/format"
	"sweeper/internal/pipeline"
)

func sampleResults(t *testing.T) []pipeline.FileResult {
	t.Helper()
	fd, err := pipeline.NewFileDescriptor("sales.csv", []byte("region,units\nnorth,4\nsouth,\n"))
	require.NoError(t, err)
	res, err := pipeline.Run(context.Background(), fd, pipeline.Request{Describe: true, Target: format.CSV})
	require.NoError(t, err)
	return []pipeline.FileResult{
		{File: fd.Name, Result: res},
		{File: "broken.csv", Err: errors.New("parse broken.csv as csv: no columns to parse from input")},
	}
}

func TestFromResults(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rep := FromResults("daily", sampleResults(t), now)

	require.Len(t, rep.Files, 2)
	assert.Equal(t, "daily", rep.Job)
	assert.Equal(t, now, rep.GeneratedAt)

	f := rep.Files[0]
	assert.Equal(t, "sales.csv", f.Name)
	assert.NotEmpty(t, f.RunID)
	assert.Equal(t, 2, f.Rows)
	assert.Equal(t, []Column{{"region", "text"}, {"units", "numeric"}}, f.Columns)
	assert.Equal(t, []string{"units"}, f.Numeric)
	assert.Equal(t, [][]any{{"region", "units"}, {"north", 4.0}, {"south", nil}}, f.Preview)
	require.Len(t, f.Stats, 1)
	assert.Equal(t, 1, f.Stats[0].Count)
	assert.True(t, math.IsNaN(float64(f.Stats[0].Std)))

	assert.Contains(t, rep.Files[1].Error, "no columns")
	assert.Empty(t, rep.Files[1].Preview)
}

/*
TestEncodeDecode writes the same report in both encodings and reads it back.
Undefined statistics must survive as NaN (null in JSON).
*/
func TestEncodeDecode(t *testing.T) {
	rep := FromResults("daily", sampleResults(t), time.Unix(1700000000, 0))

	for _, enc := range []Encoding{JSON, Msgpack} {
		t.Run(string(enc), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, rep, enc))
			if enc == JSON {
				assert.Contains(t, buf.String(), `"std": null`)
			}

			back, err := Decode(&buf, enc)
			require.NoError(t, err)
			assert.Equal(t, rep.Job, back.Job)
			assert.True(t, rep.GeneratedAt.Equal(back.GeneratedAt))
			require.Len(t, back.Files, 2)

			f := back.Files[0]
			assert.Equal(t, rep.Files[0].Preview, f.Preview)
			assert.Equal(t, rep.Files[0].Columns, f.Columns)
			assert.Equal(t, 4.0, float64(f.Stats[0].Mean))
			assert.True(t, math.IsNaN(float64(f.Stats[0].Std)))
			assert.Equal(t, rep.Files[1].Error, back.Files[1].Error)
		})
	}
}

func TestEncodingFor(t *testing.T) {
	enc, err := EncodingFor("out/Report.JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, enc)

	enc, err = EncodingFor("r.msgpack")
	require.NoError(t, err)
	assert.Equal(t, Msgpack, enc)

	_, err = EncodingFor("r.yaml")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.json")
	rep := Report{Job: "j", GeneratedAt: time.Unix(0, 0).UTC()}
	require.NoError(t, WriteFile(path, rep))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "{\n"))
	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "r.txt"), rep))
}

func TestEncodeInfinitePreview(t *testing.T) {
	fd, err := pipeline.NewFileDescriptor("a.csv", []byte("a\n1\ninf\n"))
	require.NoError(t, err)
	res, err := pipeline.Run(context.Background(), fd, pipeline.Request{Describe: true, Target: format.CSV})
	require.NoError(t, err)
	rep := FromResults("j", []pipeline.FileResult{{File: fd.Name, Result: res}}, time.Unix(0, 0))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rep, JSON))
	back, err := Decode(&buf, JSON)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a"}, {1.0}, {nil}}, back.Files[0].Preview)

	buf.Reset()
	require.NoError(t, Encode(&buf, rep, Msgpack))
	back, err = Decode(&buf, Msgpack)
	require.NoError(t, err)
	v, ok := back.Files[0].Preview[2][0].(float64)
	require.True(t, ok, "got %T", back.Files[0].Preview[2][0])
	assert.True(t, math.IsInf(v, 1))
}
