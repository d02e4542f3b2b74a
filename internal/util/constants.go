package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	LockLocal = "local"
	LockRedis = "redis"
)

// MaxUploadSize caps task media uploads.
const MaxUploadSize = 50 << 20
