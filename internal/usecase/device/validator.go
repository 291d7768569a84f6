package device

import (
	"fmt"

	domainDevice "cargo-transport/internal/domain/device"
	appErrors "cargo-transport/pkg/errors"
)

// validateCoordinates rejects positions outside the WGS84 bounds before any
// write happens; an out-of-range report never reaches the history table.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return appErrors.Validation(
			fmt.Sprintf("latitude %.6f outside [-90, 90]", lat),
			domainDevice.ErrCoordinatesOutOfRange,
		)
	}
	if lon < -180 || lon > 180 {
		return appErrors.Validation(
			fmt.Sprintf("longitude %.6f outside [-180, 180]", lon),
			domainDevice.ErrCoordinatesOutOfRange,
		)
	}
	return nil
}

func parseType(raw string) (domainDevice.Type, error) {
	t, ok := domainDevice.ParseType(raw)
	if !ok {
		return "", appErrors.Validation(fmt.Sprintf("unknown device type %q", raw), domainDevice.ErrInvalidType)
	}
	return t, nil
}
