package leadimport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV_Basic(t *testing.T) {
	tbl, err := Parse("leads.csv", strings.NewReader("Name,E,Ph\nJane Doe,jane@x.com,555-1234\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "E", "Ph"}, tbl.Columns)
	assert.Equal(t, [][]string{{"Jane Doe", "jane@x.com", "555-1234"}}, tbl.Rows)
	assert.Equal(t, "leads.csv", tbl.Source)
}

func TestParseCSV_HeaderNormalization(t *testing.T) {
	data := "\xEF\xBB\xBF Name ,,Email,Email,Email\nA,x,a@x.com,b@x.com,c@x.com\n"
	tbl, err := Parse("LEADS.CSV", strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Unnamed: 1", "Email", "Email.1", "Email.2"}, tbl.Columns)
}

func TestParseCSV_BlankAndShortRows(t *testing.T) {
	data := "Name,Email,Phone\n\n,,\nJane,jane@x.com\n  ,  , \nBob,bob@x.com,555\n"
	tbl, err := Parse("a.csv", strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Jane", "jane@x.com", ""},
		{"Bob", "bob@x.com", "555"},
	}, tbl.Rows)
}

func TestParseCSV_TrailingEmptyCellsTolerated(t *testing.T) {
	tbl, err := Parse("a.csv", strings.NewReader("A,B\n1,2,,\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}}, tbl.Rows)
}

func TestParseCSV_Errors(t *testing.T) {
	cases := map[string]string{
		"row wider than header": "A,B\n1,2,3\n",
		"bad quoting":           "A,B\n\"unterminated,2\n",
		"no header":             "\n \n",
		"latin-1 bytes":         "Name,E,Ph\nJos\xe9 D,jose@x.com,555-1234\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("a.csv", strings.NewReader(data))
			assert.ErrorIs(t, err, ErrUnreadableFile)
		})
	}
}

func TestParseCSV_NonUTF8Rejected(t *testing.T) {
	_, err := Parse("a.csv", strings.NewReader("Name\n\xff\xfe\n"))
	require.ErrorIs(t, err, ErrUnreadableFile)
	assert.Contains(t, err.Error(), "UTF-8")

	tbl, err := Parse("a.csv", strings.NewReader("Name\nJosé D\n"))
	require.NoError(t, err)
	assert.Equal(t, "José D", tbl.Rows[0][0])
}

type explodingReader struct{ t *testing.T }

func (r explodingReader) Read([]byte) (int, error) {
	r.t.Fatal("reader must not be touched for unsupported formats")
	return 0, nil
}

func TestParse_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"leads.txt", "leads.xls", "leads", "leads.csv.exe"} {
		_, err := Parse(name, explodingReader{t})
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	_, err := f.NewSheet("Ignored")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Ignored", "A1", "not read"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseXLSX_FirstSheet(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"Name", "Email", "Phone"},
		{"Jane Doe", "jane@x.com", "555-1234"},
		{"John", "john@x.com"},
	})

	tbl, err := Parse("book.XLSX", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Email", "Phone"}, tbl.Columns)
	assert.Equal(t, [][]string{
		{"Jane Doe", "jane@x.com", "555-1234"},
		{"John", "john@x.com", ""},
	}, tbl.Rows)
}

func TestParseXLSX_Corrupt(t *testing.T) {
	_, err := Parse("book.xlsx", strings.NewReader("definitely not a zip"))
	assert.ErrorIs(t, err, ErrUnreadableFile)
}

func TestTablePreview(t *testing.T) {
	tbl := &Table{Columns: []string{"A"}, Rows: [][]string{{"1"}, {"2"}, {"3"}}}
	assert.Len(t, tbl.Preview(5), 3)
	assert.Len(t, tbl.Preview(2), 2)
	assert.Equal(t, -1, tbl.ColumnIndex(""))
	assert.Equal(t, 0, tbl.ColumnIndex("A"))
}
