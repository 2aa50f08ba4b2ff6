package config

import "errors"

// ErrListDevices is returned by Parse when --list/-l was given: the caller
// should enumerate and print devices (via internal/device) and exit
// cleanly rather than starting a receiver run.
var ErrListDevices = errors.New("config: device listing requested")
