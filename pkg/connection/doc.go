// Package connection tracks whether a device is reachable and paces retries
// while it is not.
//
// dLight connections are one-shot, so there is no link to keep alive.
// Instead a Tracker records the outcome of each exchange with a device and
// derives its availability:
//
//	UNKNOWN --success--> AVAILABLE --failure--> UNAVAILABLE --success--> AVAILABLE
//
// While a device is unavailable, callers wait Backoff.Next() between
// attempts:
//
//	delay = base + random(0, base * jitter), base doubling from 5s up to 5m
//
// A success resets the backoff.
package connection
