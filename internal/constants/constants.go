package constants

import "time"

// Reserved variable names bound on every called unit
const (
	VarArg  = "__arg"
	VarLoop = "__loop"

	// NoLoopIndex marks a call that is not part of a looped call
	NoLoopIndex = -1
)

// Bootstrap configuration
const (
	// BootstrapEnvKey is the viper key resolved from APISCOPE_CONFIG
	BootstrapEnvKey = "config"
	EnvPrefix       = "APISCOPE"

	DefaultBootstrapFile = "apiscope-config.yaml"
	// DefaultBootstrapScript is evaluated when no override path is given
	DefaultBootstrapScript = "read('classpath:" + DefaultBootstrapFile + "')"

	// BootstrapConfigureKey holds configure statements inside a bootstrap document
	BootstrapConfigureKey = "configure"

	ReadFunction    = "read"
	FilePrefix      = "file:"
	ClasspathPrefix = "classpath:"
)

// HTTP client defaults
const (
	DefaultClientClass    = "resty"
	DefaultConnectTimeout = 30000 // milliseconds
	DefaultReadTimeout    = 30000 // milliseconds
	DefaultSSLAlgorithm   = "TLS"
	DefaultMaxRedirects   = 10

	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
)
