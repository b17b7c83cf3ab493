package domain

import "context"

// Dumper writes a compressed dump of a database to a local file.
type Dumper interface {
	// Dump creates dest and streams the compressed dump into it.
	Dump(ctx context.Context, db DatabaseSpec, dest string) error

	// Validate checks that the dump tooling is available.
	Validate(ctx context.Context) error
}

// Archiver writes a compressed archive of a file tree to a local file.
type Archiver interface {
	// Archive creates dest containing files.Path minus files.Exclude.
	Archive(ctx context.Context, files FilesSpec, dest string) error

	// Validate checks that the archive tooling is available.
	Validate(ctx context.Context) error
}

// ObjectStore uploads artifacts to remote storage.
type ObjectStore interface {
	// Upload sends the file at localPath to bucket/key in a single request
	// and returns the number of bytes sent.
	Upload(ctx context.Context, localPath, bucket, key string) (int64, error)

	// Validate checks that bucket is reachable with the configured credentials.
	Validate(ctx context.Context, bucket string) error
}
