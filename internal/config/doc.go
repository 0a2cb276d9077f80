// Package config loads toastpop's configuration file.
//
// The default file is toastpop.json. TOML and YAML files are accepted too;
// the format is chosen by extension. Missing fields take the defaults
// returned by New, and command line flags override file values after
// loading.
//
//	{
//	  "server": {
//	    "address": ":8080",
//	    "writeTimeout": "10s",
//	    "allowedOrigins": ["https://courts.example"]
//	  },
//	  "log": {"level": "debug", "format": "json"},
//	  "metrics": {"enabled": true, "namespace": "toastpop"}
//	}
package config
