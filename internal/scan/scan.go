// Package scan reads access point scan results captured by a Wi-Fi module.
package scan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"atlaswifi/internal/wifi"
)

// File is the on-disk scan result layout
type File struct {
	AccessPoints []Record `yaml:"access_points"`
}

// Record is one scanned network. A missing ssid key means the module did
// not report one; an empty string is an empty (hidden) SSID.
type Record struct {
	MAC  string  `yaml:"mac"`
	SSID *string `yaml:"ssid"`
	RSSI int16   `yaml:"rssi"`
}

// Load reads a scan file into an access point list
func Load(path string) (wifi.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scan load failed (%s): %w", path, err)
	}

	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scan parse failed (%s): %w", path, err)
	}

	return list, nil
}

// Parse decodes scan YAML. MAC addresses are kept as text and only checked
// when the payload pipeline first filters them.
func Parse(data []byte) (wifi.List, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if len(f.AccessPoints) > wifi.MaxAccessPoints {
		return nil, fmt.Errorf("%d access points, max %d", len(f.AccessPoints), wifi.MaxAccessPoints)
	}

	list := make(wifi.List, 0, len(f.AccessPoints))
	for i, r := range f.AccessPoints {
		ap := &wifi.AccessPoint{
			MACAddress: r.MAC,
			RSSI:       r.RSSI,
			Status:     wifi.StatusNew,
		}
		if r.SSID != nil {
			ssid, err := wifi.NewSSID(*r.SSID)
			if err != nil {
				return nil, fmt.Errorf("access point %d: %w", i, err)
			}
			ap.SSID = ssid
		}
		list = append(list, ap)
	}

	return list, nil
}
