// Package config provides configuration loading and validation for bucketfront.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (BUCKETFRONT_ prefix, plus the S3_* names)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with BUCKETFRONT_ prefix:
//   - server.port → BUCKETFRONT_SERVER_PORT
//   - fallback.policy → BUCKETFRONT_FALLBACK_POLICY
//   - storage.bucket → BUCKETFRONT_STORAGE_BUCKET or S3_BUCKET
//
// The storage credentials also accept S3_REGION, S3_ENDPOINT,
// S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY.
//
// # Validation
//
//   - Bucket, region, access key and secret key are required
//   - Ports must be 1-65535
//   - sign.cache_ttl must be shorter than sign.expires
//   - fallback.policy must be walkup, first-level, or none
//   - Log level must be debug, info, warn, or error
package config
