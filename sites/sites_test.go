package sites_test

import (
	"testing"

	"github.com/jrsteele09/pr-admin-client/sites"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://WWW.Example.com/", "example.com"},
		{"example.com", "example.com"},
		{"http://news.example.com/press/", "news.example.com/press"},
		{"  https://example.com/a/b  ", "example.com/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := sites.NormalizeURL(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := sites.NormalizeURL("")
	require.Error(t, err)
	_, err = sites.NormalizeURL("https://")
	require.Error(t, err)
}

func TestWebsiteValidate(t *testing.T) {
	valid := sites.Website{Name: "Daily News", URL: "dailynews.example", DomainAuthority: 55}
	require.NoError(t, valid.Validate())

	noName := valid
	noName.Name = " "
	require.Error(t, noName.Validate())

	badDA := valid
	badDA.DomainAuthority = 101
	require.Error(t, badDA.Validate())

	negative := valid
	negative.Price = -1
	require.Error(t, negative.Validate())
}
