// Rampart is an in-process request inspection daemon built around a
// pluggable WAF rule engine.
//
// It normalizes incoming HTTP traffic into typed addresses, evaluates
// subscribed rules under a strict CPU-time budget, and reports attack
// events to structured logs or a SQLite store.
//
// Usage:
//
//	# Start the server with default configuration
//	rampart run
//
//	# Start with a custom configuration file
//	rampart run --config /etc/rampart/config.yaml
//
//	# Validate configuration and rules without serving
//	rampart validate
//
//	# Show version information
//	rampart version
package main

func main() {
	Execute()
}
