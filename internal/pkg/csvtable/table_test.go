package csvtable

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "Name,Approx. Address,Lat,Lon\n" +
	"Food Bank,\"12 Main St, Springfield\",,\n" +
	"Shelter,,40.1,-75.2\n"

func TestRead(t *testing.T) {
	tbl, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Approx. Address", "Lat", "Lon"}, tbl.Header)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "12 Main St, Springfield", tbl.Get(0, "Approx. Address"))
	assert.Equal(t, "40.1", tbl.Get(1, "Lat"))
	assert.Equal(t, "", tbl.Get(0, "Unknown"))
	assert.Equal(t, map[string]string{
		"Name":            "Shelter",
		"Approx. Address": "",
		"Lat":             "40.1",
		"Lon":             "-75.2",
	}, tbl.Record(1))
}

func TestRead_Edges(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := Read(strings.NewReader(""))
		assert.True(t, errors.Is(err, ErrNoHeader))
	})

	t.Run("short rows are padded", func(t *testing.T) {
		tbl, err := Read(strings.NewReader("a,b,c\n1\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "", ""}, tbl.Rows[0])
	})

	t.Run("byte order mark is stripped", func(t *testing.T) {
		tbl, err := Read(strings.NewReader("\ufeffLat,Lon\n1,2\n"))
		require.NoError(t, err)
		assert.True(t, tbl.HasColumns("Lat", "Lon"))
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := Read(strings.NewReader("a,b\n\"x,y\n"))
		assert.Error(t, err)
	})
}

func TestMissingColumns(t *testing.T) {
	tbl := New([]string{"Lat", "Lon"})
	assert.Empty(t, tbl.MissingColumns("Lat", "Lon"))
	assert.Equal(t, []string{"Approx. Address"}, tbl.MissingColumns("Approx. Address", "Lat"))
	assert.False(t, tbl.HasColumns("Approx. Address"))
}

func TestSetAndWrite(t *testing.T) {
	tbl, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	tbl.Set(0, "Lat", "39.7817213")
	tbl.Set(0, "Lon", "-89.6501481")
	tbl.Set(0, "Missing", "ignored")

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))

	assert.Equal(t, "Name,Approx. Address,Lat,Lon\n"+
		"Food Bank,\"12 Main St, Springfield\",39.7817213,-89.6501481\n"+
		"Shelter,,40.1,-75.2\n", buf.String())
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aid.csv")

	tbl, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.NoError(t, tbl.WriteFile(path))

	again, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Header, again.Header)
	assert.Equal(t, tbl.Rows, again.Rows)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
