package influxdb

import "errors"

// Connect errors. Write failures are asynchronous and go to the onError
// callback instead.
var (
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
)
