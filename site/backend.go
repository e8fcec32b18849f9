package site

import "database/sql"

// ErrNotFound is returned when a document or snapshot does not exist.
var ErrNotFound = sql.ErrNoRows

// Document keys.
const (
	KeySite      = "siteData"
	KeySnapshots = "siteDataVersions"
	KeyDraft     = "siteDataDraft"
)

// Backend stores named JSON documents. GetDocument returns ErrNotFound for
// a missing key.
type Backend interface {
	GetDocument(key string) ([]byte, error)
	PutDocument(key string, data []byte) error
	DeleteDocument(key string) error
}
