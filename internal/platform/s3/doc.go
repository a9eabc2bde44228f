// Package s3 is a small client for S3-compatible object storage, used to
// archive deploy reports.
//
// Credentials are either static or taken from the default AWS credential
// chain, so the same binary works with AWS and with self-hosted stores.
package s3
