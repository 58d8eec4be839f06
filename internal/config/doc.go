// Package config loads the wcall CLI configuration.
//
// Settings come from, in increasing priority: struct defaults, a YAML file,
// WCALL_* environment variables and command line flags bound by the caller.
//
//	Config
//	├── BaseURL      ""         base URL request paths are resolved against
//	├── Timeout      30s        overall HTTP timeout per request
//	├── Codec        "text"     text, json, xml, yaml or none
//	├── Token        ""         bearer token, never logged
//	├── Headers      {}         headers added to every request
//	├── Executor
//	│   ├── Kind            "single"   single, pool or sync
//	│   ├── Workers         4          pool slots
//	│   ├── LockOSThread    false
//	│   ├── PinWorkers      false      Linux only
//	│   ├── RestartInitial  5ms        crash-loop backoff start
//	│   └── RestartMax      1s         crash-loop backoff cap
//	├── LogLevel     "info"
//	└── LogFormat    "console"  console or json
//
// Nested keys map to environment variables with "_" separators, e.g.
// executor.kind is WCALL_EXECUTOR_KIND.
package config
