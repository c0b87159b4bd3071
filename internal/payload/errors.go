package payload

import (
	"errors"

	"atlaswifi/internal/mac"
	"atlaswifi/internal/wifi"
)

var (
	ErrNullParameter        = wifi.ErrNullParameter
	ErrMacAddressSeparator  = mac.ErrSeparator
	ErrMacAddressFormat     = mac.ErrFormat
	ErrAccessPointListSize  = errors.New("payload: invalid access point list size")
	ErrNoneValidAccessPoint = errors.New("payload: no valid access point")
	ErrInvalidSorting       = errors.New("payload: invalid sorting")
)

// Kind returns a short name for a pipeline error, for logs and metrics
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNullParameter):
		return "null_parameter"
	case errors.Is(err, ErrMacAddressSeparator):
		return "mac_address_separator"
	case errors.Is(err, ErrMacAddressFormat):
		return "mac_address_format"
	case errors.Is(err, ErrAccessPointListSize):
		return "access_point_list_size"
	case errors.Is(err, ErrNoneValidAccessPoint):
		return "none_valid_access_point"
	case errors.Is(err, ErrInvalidSorting):
		return "invalid_sorting"
	default:
		return "unknown"
	}
}
