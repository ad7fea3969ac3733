package airspy

import "errors"

// ErrConfig marks construction-time configuration failures: an unsupported
// sample rate, a non-positive center frequency, a missing collaborator, or a
// source file that does not exist. Wrapped errors satisfy
// errors.Is(err, ErrConfig).
var ErrConfig = errors.New("invalid stream configuration")

// ErrCorruptData marks recorded IQ data that ends mid-pair. The file reader
// records it inside its background loop and surfaces it from the next Stop
// or Join call.
var ErrCorruptData = errors.New("corrupt IQ data")
