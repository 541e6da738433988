package report_test

import (
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/jrsteele09/pr-admin-client/report"
	"github.com/stretchr/testify/require"
)

func TestParseCSVWithPartnerHeaders(t *testing.T) {
	csv := strings.Join([]string{
		"Media Outlet,Website URL,Potential Audience,DA,Industry,Publication Date",
		`Daily Herald,https://dailyherald.example/pr/1,"1,200,000",72,News,2026-03-01`,
		"Tech Wire,https://techwire.example/pr/1,350K,58,Technology,2026-03-02",
		",,,,,",
		"Local Times,https://localtimes.example/pr/1,N/A,,News,2026-03-02",
	}, "\n")

	rep, err := report.Parse("march.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, report.FormatCSV, rep.Format)
	require.Equal(t, "march.csv", rep.Name)
	require.Len(t, rep.Rows, 3)
	require.Empty(t, rep.Warnings)

	first := rep.Rows[0]
	require.Equal(t, "Daily Herald", first.Outlet)
	require.Equal(t, "https://dailyherald.example/pr/1", first.URL)
	require.Equal(t, int64(1200000), first.PotentialReach)
	require.Equal(t, 72, first.DomainAuthority)
	require.Equal(t, "News", first.Category)
	require.Equal(t, "2026-03-01", first.PublishedAt)

	require.Equal(t, 3, rep.Summary.Outlets)
	require.Equal(t, int64(1550000), rep.Summary.TotalReach)
	require.InDelta(t, 65.0, rep.Summary.AverageDomainAuthority, 0.001)
}

func TestParseCSVSemicolonAndWarnings(t *testing.T) {
	csv := "\xef\xbb\xbfName;Link;Reach\nAlpha;alpha.example;lots\nBeta;beta.example;2.5k\n"

	rep, err := report.Parse("export", strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, report.FormatCSV, rep.Format)
	require.Len(t, rep.Rows, 2)
	require.Equal(t, "Alpha", rep.Rows[0].Outlet)
	require.Zero(t, rep.Rows[0].PotentialReach)
	require.Equal(t, int64(2500), rep.Rows[1].PotentialReach)
	require.Len(t, rep.Warnings, 1)
	require.Contains(t, rep.Warnings[0], "row 2")
}

func TestParseCSVDerivesOutletFromURL(t *testing.T) {
	csv := "Live URL,Traffic\nhttps://www.news.example/story,1000\n"

	rep, err := report.Parse("links.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, "news.example", rep.Rows[0].Outlet)
}

func TestParseJSONArrayAndWrapper(t *testing.T) {
	array := `[
		{"publication": "Daily Herald", "url": "https://dailyherald.example", "monthly_visitors": 1200000, "domain_authority": 72},
		{"publication": "Tech Wire", "url": "https://techwire.example", "monthly_visitors": "350k"}
	]`
	rep, err := report.Parse("report.json", strings.NewReader(array))
	require.NoError(t, err)
	require.Equal(t, report.FormatJSON, rep.Format)
	require.Len(t, rep.Rows, 2)
	require.Equal(t, "Daily Herald", rep.Rows[0].Outlet)
	require.Equal(t, int64(1200000), rep.Rows[0].PotentialReach)
	require.Equal(t, int64(350000), rep.Rows[1].PotentialReach)

	wrapped := `{"total": 1, "Results": [{"outlet": "Alpha", "reach": "1,000"}]}`
	rep, err = report.Parse("download", strings.NewReader(wrapped))
	require.NoError(t, err)
	require.Equal(t, report.FormatJSON, rep.Format)
	require.Len(t, rep.Rows, 1)
	require.Equal(t, int64(1000), rep.Rows[0].PotentialReach)
}

func TestParseErrors(t *testing.T) {
	_, err := report.Parse("report.xlsx", strings.NewReader("PK..."))
	require.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)

	_, err = report.Parse("notes", strings.NewReader("just some words"))
	require.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)

	_, err = report.Parse("mystery.csv", strings.NewReader("foo,bar\n1,2\n"))
	require.ErrorIs(t, err, apperrors.ErrUnknownColumns)

	_, err = report.Parse("bad.json", strings.NewReader(`{"meta": {}}`))
	require.Error(t, err)

	_, err = report.Parse("bad.json", strings.NewReader(`[1, 2]`))
	require.Error(t, err)
}

func TestSummarizeEmpty(t *testing.T) {
	require.Equal(t, report.Summary{}, report.Summarize(nil))
}

func TestParseJSONPrefersAliasOrder(t *testing.T) {
	doc := `{
		"items": [{"outlet": "Wrong", "reach": 1}],
		"data": [{"name": "Contact Person", "outlet": "Daily Herald", "reach": 500, "visitors": 900}]
	}`
	for range 20 {
		rep, err := report.Parse("report.json", strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, rep.Rows, 1)
		require.Equal(t, "Daily Herald", rep.Rows[0].Outlet)
		require.Equal(t, int64(500), rep.Rows[0].PotentialReach)
	}

	rep, err := report.Parse("report.json", strings.NewReader(`{"Rows": [{"outlet": "Alpha"}], "RESULTS": [{"outlet": "Beta"}]}`))
	require.NoError(t, err)
	require.Equal(t, "Alpha", rep.Rows[0].Outlet)
}
