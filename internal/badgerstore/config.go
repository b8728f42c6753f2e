// Package badgerstore is the only concrete C5/C8 implementation in
// this module: it backs every ondo capability interface and applies
// ondo.Effects with github.com/dgraph-io/badger/v4 as the underlying
// engine, emulating column families atop Badger's single flat
// keyspace via a persisted name registry and byte-prefixed keys.
package badgerstore

// Config configures the Badger-backed store (SPEC_FULL.md §A2,
// grounded on the teacher's resource/badger.DataSourceConfig).
type Config struct {
	// DataDir is the directory Badger stores its LSM and value log
	// files in. Ignored when InMemory is true.
	DataDir string

	// InMemory runs Badger with no on-disk persistence, for tests and
	// ephemeral servers.
	InMemory bool

	// SyncWrites fsyncs every write before it returns. Off by default,
	// matching the teacher's default.
	SyncWrites bool

	// ValueThreshold is the size, in bytes, above which a value is
	// stored in Badger's separate value log rather than the LSM tree.
	ValueThreshold int64
}

// DefaultConfig returns a Config with the teacher's defaults, rooted
// at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:        dataDir,
		InMemory:       false,
		SyncWrites:     false,
		ValueThreshold: 1 << 10,
	}
}
