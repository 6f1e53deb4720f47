package wire

// Status is the status string a device reports in a state response.
type Status string

const (
	// StatusSuccess indicates the device answered the query normally.
	StatusSuccess Status = "SUCCESS"
)

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}
