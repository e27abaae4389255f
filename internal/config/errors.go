package config

import "errors"

// Sentinel errors for configuration validation.
var (
	ErrMissingRequired       = errors.New("missing required flag")
	ErrInvalidEncoder        = errors.New("invalid encoder")
	ErrInvalidChunkMethod    = errors.New("invalid chunk method")
	ErrInvalidScenecutMethod = errors.New("invalid scenecut method")
	ErrInvalidConcatMethod   = errors.New("invalid concat method")
	ErrInvalidChunkOrder     = errors.New("invalid chunk order")
	ErrInvalidQuantizerRange = errors.New("invalid quantizer range")
	ErrInvalidTargetVMAF     = errors.New("invalid target VMAF")
	ErrInvalidExtraSplit     = errors.New("invalid extra-split value")
	ErrInvalidWorkers        = errors.New("invalid worker count")
)
