// pkg/inventory/parse.go - parsing helpers for Click-to-Run registry values.

package inventory

import (
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/windowsadmins/officedeploy/pkg/product"
)

// channelByGUID maps the GUID embedded in the Click-to-Run CDN base URL to
// the friendly channel name the deployment tool accepts.
var channelByGUID = map[string]string{
	"492350f6-3a01-4f97-b9c0-c7c6ddf67d60": "Current",
	"64256afe-f5d9-4f86-8936-8840a6a4f5be": "CurrentPreview",
	"55336b82-a18d-4dd6-b5f6-9e5095c314a6": "MonthlyEnterprise",
	"7ffbc6bf-bc32-4f92-8982-f9dd17fd3114": "SemiAnnual",
	"b8f9b850-328d-4355-9145-c59439a0c4cf": "SemiAnnualPreview",
	"5440fd1f-7ecb-4221-8110-145efaa6372f": "Beta",
}

// ResolveChannel maps a CDN base URL to its friendly channel name. Unknown
// URLs are returned unchanged so the mismatch shows up in logs.
func ResolveChannel(cdnBaseURL string) string {
	url := strings.TrimRight(strings.TrimSpace(cdnBaseURL), "/")
	idx := strings.LastIndex(url, "/")
	if idx >= 0 {
		url = url[idx+1:]
	}
	if channel, ok := channelByGUID[strings.ToLower(url)]; ok {
		return channel
	}
	return cdnBaseURL
}

// ParseProductReleaseIDs splits the comma-delimited ProductReleaseIds value
// into known catalog editions and everything else.
func ParseProductReleaseIDs(raw string) (known []product.ID, unknown []string) {
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := product.Parse(part); err == nil {
			known = append(known, id)
		} else {
			unknown = append(unknown, part)
		}
	}
	return known, unknown
}

// BuildOutdated reports whether the installed build string is older than the
// minimum build.
func BuildOutdated(installed, minimum string) (bool, error) {
	if installed == "" || minimum == "" {
		return false, nil
	}
	have, err := goversion.NewVersion(installed)
	if err != nil {
		return false, err
	}
	want, err := goversion.NewVersion(minimum)
	if err != nil {
		return false, err
	}
	return have.LessThan(want), nil
}
