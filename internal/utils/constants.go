package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

const (
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".copier.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".copier"
	// GlobalConfigFileName is the name of the global configuration file.
	GlobalConfigFileName = "config.yaml"
	// IgnoreFileName is the name of the per-root ignore file.
	IgnoreFileName = ".copierignore"
	// DownloadSuffix is appended to the root name to form the download file name.
	DownloadSuffix = "-structure.md"
	// DefaultDownloadStem is used as the download name stem when no root is selected.
	DefaultDownloadStem = "code"
)

// LoggerInitializationFailedMessageFormat is used when the zap logger cannot be constructed.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %v"

// ApplicationExecutionFailedMessage prefixes fatal command failures.
const ApplicationExecutionFailedMessage = "copier failed"
