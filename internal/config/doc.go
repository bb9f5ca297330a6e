// Package config provides configuration parsing for the anchor CLI and live
// playground.
//
// The configuration is stored in anchor.json. This package handles loading,
// saving, and validating it, and turns it into engine options and a logger.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "metricsPath": "/metrics"
//	  },
//	  "engine": {
//	    "orphanPolicy": "warn",
//	    "maxPassDepth": 64
//	  },
//	  "live": {
//	    "initialColor": "red",
//	    "initialBackground": "white",
//	    "palette": ["red", "green", "blue"],
//	    "sendBuffer": 16
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
//
//	engine := anchor.NewEngine(cfg.EngineOptions(cfg.Logger(os.Stderr))...)
package config
