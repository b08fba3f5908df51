package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/officedeploy/pkg/product"
)

func TestResolveChannelKnownGUIDs(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://officecdn.microsoft.com/pr/492350f6-3a01-4f97-b9c0-c7c6ddf67d60", "Current"},
		{"http://officecdn.microsoft.com/pr/55336b82-a18d-4dd6-b5f6-9e5095c314a6", "MonthlyEnterprise"},
		{"http://officecdn.microsoft.com/pr/7ffbc6bf-bc32-4f92-8982-f9dd17fd3114", "SemiAnnual"},
		{"http://officecdn.microsoft.com/pr/7FFBC6BF-BC32-4F92-8982-F9DD17FD3114/", "SemiAnnual"},
		{"http://officecdn.microsoft.com/pr/5440fd1f-7ecb-4221-8110-145efaa6372f", "Beta"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ResolveChannel(tc.url), tc.url)
	}
}

func TestResolveChannelUnknownURLPassesThrough(t *testing.T) {
	url := "http://internal.contoso.com/office/custom"
	assert.Equal(t, url, ResolveChannel(url))
}

func TestParseProductReleaseIDs(t *testing.T) {
	known, unknown := ParseProductReleaseIDs("O365ProPlusRetail,VisioProXVolume")
	assert.Equal(t, []product.ID{product.O365ProPlusRetail, product.VisioProXVolume}, known)
	assert.Empty(t, unknown)
}

func TestParseProductReleaseIDsSkipsUnknownEntries(t *testing.T) {
	known, unknown := ParseProductReleaseIDs("O365ProPlusRetail, LanguagePack, ,ProjectProRetail")
	assert.Equal(t, []product.ID{product.O365ProPlusRetail, product.ProjectProRetail}, known)
	assert.Equal(t, []string{"LanguagePack"}, unknown)
}

func TestParseProductReleaseIDsEmpty(t *testing.T) {
	known, unknown := ParseProductReleaseIDs("")
	assert.Empty(t, known)
	assert.Empty(t, unknown)
}

func TestBuildOutdated(t *testing.T) {
	outdated, err := BuildOutdated("16.0.9126.2152", "16.0.10000.0000")
	require.NoError(t, err)
	assert.True(t, outdated)

	outdated, err = BuildOutdated("16.0.17328.20068", "16.0.10000.0000")
	require.NoError(t, err)
	assert.False(t, outdated)
}

func TestBuildOutdatedMissingValues(t *testing.T) {
	outdated, err := BuildOutdated("", "16.0.10000.0000")
	require.NoError(t, err)
	assert.False(t, outdated)
}

func TestBuildOutdatedMalformedVersion(t *testing.T) {
	_, err := BuildOutdated("not-a-version", "16.0.10000.0000")
	assert.Error(t, err)
}

func TestDisplayNames(t *testing.T) {
	apps := []Application{
		{DisplayName: "Microsoft Office Professional Plus 2016"},
		{DisplayName: ""},
		{DisplayName: "7-Zip"},
	}
	assert.Equal(t, []string{"Microsoft Office Professional Plus 2016", "7-Zip"}, DisplayNames(apps))
}
