package enums

import "fmt"

// DeviceType is the coarse category picked on the first wizard step.
type DeviceType string

const (
	DeviceTypePhone  DeviceType = "phone"
	DeviceTypeTablet DeviceType = "tablet"
)

var validDeviceTypes = []DeviceType{
	DeviceTypePhone,
	DeviceTypeTablet,
}

// String implements fmt.Stringer.
func (d DeviceType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeviceType.
func (d DeviceType) IsValid() bool {
	for _, candidate := range validDeviceTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeviceType converts raw input into a DeviceType.
func ParseDeviceType(value string) (DeviceType, error) {
	for _, candidate := range validDeviceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid device type %q", value)
}
