// Package config provides centralized configuration management for Sales Pulse.
//
// # Configuration Sources
//
// Configuration is layered, lowest priority first:
//
//	1. Default values (Default)
//	2. A YAML file (SALES_CONFIG_FILE, or config.yaml / configs/config.yaml)
//	3. Environment variables prefixed with SALES_
//
// # Environment Variables
//
//	SALES_SERVER_PORT=8080
//	SALES_DATA_DIR=./data
//	SALES_DATA_CATEGORY_ORDER=appliance_first
//	SALES_CACHE_BACKEND=redis
//	SALES_CACHE_REDIS_URL=redis://localhost:6379/0
//	SALES_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts := cfg.Data.IngestOptions()
package config
