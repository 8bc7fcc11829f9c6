// Package s3store implements bucketfront.Storage for S3 and S3-compatible
// object stores (MinIO, R2, Ceph) using the AWS SDK for Go v2.
//
// Existence is probed with HeadObject and access URLs are SigV4 presigned
// URLs, so the gateway never proxies credentials to clients.
package s3store
