// Package app wires the sales dashboard service together and manages its
// lifecycle.
//
// Initialization runs in a fixed order:
//
//	1. Load configuration from defaults, an optional YAML file and the environment
//	2. Initialize logging and OpenTelemetry
//	3. Load every input file into the immutable sales dataset
//	4. Write the optional SQLite snapshot
//	5. Create the query cache and services
//	6. Build the router and HTTP server
//
// Errors are returned to the caller; the package never calls os.Exit.
// Run handles SIGINT and SIGTERM: the HTTP server drains active requests,
// websocket clients receive a close frame, the cache connection is closed and
// pending telemetry is flushed.
package app
