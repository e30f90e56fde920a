// Package config loads runtime configuration for the gallery terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file passed to LoadConfig (the -c/--config flag).
//  3. Environment variables (GALLERY_SERVER, GALLERY_OUTPUT_DIR,
//     GALLERY_DATA_FILE, GALLERY_REQUEST_TIMEOUT).
//  4. Command-line flags, applied by the cobra root command.
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:5000",
//	  "output_dir": "./exports",
//	  "data_file": "gallery.db",
//	  "request_timeout": "60s"
//	}
package config
