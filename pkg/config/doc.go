// Package config defines the YAML configuration surface of the rampart
// daemon and its loading pipeline.
//
// Configuration is loaded in a fixed sequence: parse the YAML file, apply
// defaults for unset fields, apply RAMPART_* environment variable
// overrides, then validate the final result. Environment variables always
// win over file values.
//
// Example configuration:
//
//	server:
//	  listen_address: ":8080"
//	ruleset:
//	  path: /etc/rampart/rules
//	  watch: true
//	waf:
//	  engine: ""
//	  budget: 5ms
//	events:
//	  reporter: sqlite
//	  sqlite:
//	    path: /var/lib/rampart/events.db
//	  retention:
//	    days: 30
package config
