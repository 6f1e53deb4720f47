// Package convert maps between the host lighting scales and the dLight
// device scales.
//
// Hosts express brightness as 0-255 and color temperature in mireds.
// The device uses brightness 0-100 and Kelvin. All conversions round half
// to even.
package convert

import "math"

// Color temperature limits of the device.
const (
	// MinKelvin is the warmest temperature the device supports.
	MinKelvin = 2600

	// MaxKelvin is the coolest temperature the device supports.
	MaxKelvin = 6000

	// MinMireds corresponds to MaxKelvin.
	MinMireds = 167

	// MaxMireds corresponds to MinKelvin.
	MaxMireds = 385
)

const (
	hostBrightnessMax   = 255
	deviceBrightnessMax = 100
	miredScale          = 1_000_000
)

// BrightnessToDevice converts host brightness (0-255) to device brightness (0-100).
// A nil input returns nil.
func BrightnessToDevice(b *int) *int {
	if b == nil {
		return nil
	}
	v := DeviceBrightness(*b)
	return &v
}

// BrightnessToHost converts device brightness (0-100) to host brightness (0-255).
// A nil input returns nil.
func BrightnessToHost(b *int) *int {
	if b == nil {
		return nil
	}
	v := HostBrightness(*b)
	return &v
}

// DeviceBrightness is round(100 * b / 255).
func DeviceBrightness(b int) int {
	return roundDiv(deviceBrightnessMax*float64(b), hostBrightnessMax)
}

// HostBrightness is round(255 * b / 100).
func HostBrightness(b int) int {
	return roundDiv(hostBrightnessMax*float64(b), deviceBrightnessMax)
}

// MiredsToKelvin is round(1_000_000 / mireds). Non-positive input returns 0.
func MiredsToKelvin(mireds int) int {
	if mireds <= 0 {
		return 0
	}
	return roundDiv(miredScale, float64(mireds))
}

// KelvinToMireds is round(1_000_000 / kelvin). Non-positive input returns 0.
func KelvinToMireds(kelvin int) int {
	if kelvin <= 0 {
		return 0
	}
	return roundDiv(miredScale, float64(kelvin))
}

// ClampMireds limits mireds to the range the device supports.
func ClampMireds(mireds int) int {
	return min(max(mireds, MinMireds), MaxMireds)
}

// ClampKelvin limits a temperature to the range the device supports.
func ClampKelvin(kelvin int) int {
	return min(max(kelvin, MinKelvin), MaxKelvin)
}

func roundDiv(num, den float64) int {
	return int(math.RoundToEven(num / den))
}
