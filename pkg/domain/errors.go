package domain

import "errors"

// ErrMalformedBlock is returned when a block start marker has no matching end marker.
var ErrMalformedBlock = errors.New("malformed block: missing %endblock")

// ErrBlockNotFound is returned when a named block does not appear in the input.
var ErrBlockNotFound = errors.New("block not found")

// ErrMissingPriorOutput is returned when the previous point left no log or input to chain from.
var ErrMissingPriorOutput = errors.New("missing prior output")

// ErrUnconvergedRun is returned when the previous point's log holds no relaxed geometry.
var ErrUnconvergedRun = errors.New("unconverged run")

// ErrSolverLaunch is returned when the solver process could not be started.
var ErrSolverLaunch = errors.New("solver launch failed")

// ErrChecksumlessCheckpoint is returned when the autostart marker exists but no checkpoint does.
var ErrChecksumlessCheckpoint = errors.New("autostart marker present without checkpoint")

// ErrCheckpointNotFound is returned when a sweep ID has no stored checkpoint.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// ErrCorruptCheckpoint is returned when a stored checkpoint fails its integrity check.
var ErrCorruptCheckpoint = errors.New("checkpoint is corrupt")

// ErrInputDeclined is returned when the operator refuses to supply a replacement input.
var ErrInputDeclined = errors.New("replacement input declined")
