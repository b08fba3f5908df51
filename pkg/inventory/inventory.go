// pkg/inventory/inventory.go - reads installed Office state from the registry.

package inventory

import (
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/windowsadmins/officedeploy/pkg/logging"
	"github.com/windowsadmins/officedeploy/pkg/product"
)

const clickToRunKeyPath = `SOFTWARE\Microsoft\Office\ClickToRun\Configuration`

// ClickToRun is the installed Click-to-Run state captured once at run start.
type ClickToRun struct {
	Installed       bool
	Platform        string // "x86" or "x64"
	CDNBaseURL      string
	Channel         string // friendly channel name resolved from CDNBaseURL
	Version         string // VersionToReport build string
	Products        []product.ID
	UnknownProducts []string // release IDs present on disk but not in the catalog
}

// Inventory converts the captured state into reconciliation input.
func (c ClickToRun) Inventory() product.Inventory {
	return product.Inventory{
		Installed: c.Products,
		Platform:  c.Platform,
		Channel:   c.Channel,
	}
}

// ReadClickToRun reads the Click-to-Run configuration key. A machine without
// any Click-to-Run installation yields a zero ClickToRun with Installed false
// and a nil error.
func ReadClickToRun() (ClickToRun, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, clickToRunKeyPath,
		registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		if err == registry.ErrNotExist {
			logging.Info("No Click-to-Run installation found")
			return ClickToRun{}, nil
		}
		return ClickToRun{}, fmt.Errorf("opening Click-to-Run configuration key: %w", err)
	}
	defer key.Close()

	var c2r ClickToRun
	c2r.Installed = true

	if platform, _, err := key.GetStringValue("Platform"); err == nil {
		c2r.Platform = platform
	}
	if cdn, _, err := key.GetStringValue("CDNBaseUrl"); err == nil {
		c2r.CDNBaseURL = cdn
		c2r.Channel = ResolveChannel(cdn)
	}
	if ver, _, err := key.GetStringValue("VersionToReport"); err == nil {
		c2r.Version = ver
	}
	if ids, _, err := key.GetStringValue("ProductReleaseIds"); err == nil {
		c2r.Products, c2r.UnknownProducts = ParseProductReleaseIDs(ids)
	}

	logging.Info("Detected Click-to-Run installation",
		"platform", c2r.Platform,
		"channel", c2r.Channel,
		"version", c2r.Version,
		"products", c2r.Products)
	for _, unknown := range c2r.UnknownProducts {
		logging.Warn("Ignoring unrecognized installed product release ID", "release_id", unknown)
	}

	return c2r, nil
}
