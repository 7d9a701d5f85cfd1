package hci

import "time"

const (
	// DefaultRetryPeriod is how long a reset waits for its answer before it is
	// sent again.
	DefaultRetryPeriod = 4 * time.Second

	// BaudRateSettleTime is the pause after the local port changed rate.
	BaudRateSettleTime = time.Second
)

const (
	// chipID4330B2 never sends the two bytes after the minidriver is loaded.
	chipID4330B2 = 0x43

	minidriverTrailerLength = 2
)
