package mock

import "errors"

// Mock package errors. They reach clients as gRPC status messages.
var (
	// ErrUnknownConnection is returned for a cookie the device never issued.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrSlcNotEnabled is returned when disabling an SLC that is not up.
	ErrSlcNotEnabled = errors.New("service level connection not enabled")

	// ErrInvalidBatteryLevel is returned for a percentage outside 0..100.
	ErrInvalidBatteryLevel = errors.New("battery level out of range")

	// ErrAddressRequired is returned when a request carries no address.
	ErrAddressRequired = errors.New("address required")
)
