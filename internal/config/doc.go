// Package config loads dbgfront's configuration.
//
// Configuration comes from three places, later ones overriding earlier:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. DBGFRONT_* environment variables
//
// Example TOML:
//
//	interpreter = "mi3"
//
//	[logging]
//	level = "debug"
//	file = "/tmp/dbgfront.log"
//
//	[session_log]
//	file = "dbgfront.txt"
//	redirect = true
//
//	[target]
//	adapter = ["dlv", "dap"]
//	program = "./hello"
//
//	[remote]
//	listen = "127.0.0.1:4712"
//
// Watch reloads the file when it changes on disk.
package config
