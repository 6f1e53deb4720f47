// Package dlight is a client for dLight smart lights.
//
// Every call opens a TCP connection to the device (port 3333), writes one
// JSON command, reads one length-prefixed JSON reply and closes the
// connection:
//
//	client := dlight.NewClient(dlight.WithLogger(logger))
//	info, err := client.QueryDeviceInfo(ctx, "192.168.1.40", "dl-0001")
//	_, err = client.TurnOn(ctx, host, id, dlight.Brightness(128), dlight.Mireds(250))
//
// Failures carry one of three kinds, tested with errors.Is:
// ErrCannotConnect (transport failure, retryable), ErrWrongID (the device
// refused the request, reported through an out-of-range reply length or a
// connection closed without a reply) and ErrMalformedResponse.
//
// Brightness is given on the 0-255 host scale and color temperature in
// mireds; the client converts both to the device's 0-100 and Kelvin scales.
package dlight
