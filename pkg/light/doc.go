// Package light models a dLight as a home-automation light entity.
//
// A Light caches the last known state on host scales (brightness 0-255,
// color temperature in mireds) and its availability. Update refreshes the
// cache from the device; TurnOn and TurnOff fold the device's reply into
// it. A Poller keeps a set of lights fresh and reports changes.
package light
