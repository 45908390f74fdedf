package ports

import "context"

// Family names a column family of the embedded key-value store.
type Family string

const (
	FamilyAccounts     Family = "accounts"
	FamilyTransactions Family = "transactions"
	FamilyContracts    Family = "contracts"
	FamilyChains       Family = "blockchains"
	FamilyIndex        Family = "index"
	FamilyAnalytics    Family = "analytics"
)

// Families lists every column family the store must create on open.
func Families() []Family {
	return []Family{
		FamilyAccounts,
		FamilyTransactions,
		FamilyContracts,
		FamilyChains,
		FamilyIndex,
		FamilyAnalytics,
	}
}

// Element is one key/value pair of a column family.
type Element struct {
	Key   []byte
	Value []byte
}

// KVStore is an ordered, byte-keyed store partitioned into column families.
// Records are append-only: the requireAbsent discipline forbids in-place
// mutation and there is no delete.
type KVStore interface {
	// Put writes key=value into the family. With requireAbsent it fails if
	// the key already exists, without writing. Each successful Put also
	// advances the family's analytics counter, atomically with the write.
	Put(ctx context.Context, family Family, key, value []byte, requireAbsent bool) error

	// Get returns the stored value, or a not-found error.
	Get(ctx context.Context, family Family, key []byte) ([]byte, error)

	// Exists reports whether key is present in the family.
	Exists(ctx context.Context, family Family, key []byte) (bool, error)

	// BatchPut writes all pairs atomically. It does not touch analytics.
	BatchPut(ctx context.Context, family Family, pairs []Element) error

	// BatchGet iterates the family in ascending key order, skips the first
	// skip entries and returns up to limit subsequent ones. The paging is
	// stable only while no writes interleave.
	BatchGet(ctx context.Context, family Family, skip, limit int) ([]Element, error)

	// Analytics returns the family's put counter, or a not-found error if
	// the family has never received a single Put.
	Analytics(ctx context.Context, family Family) (int64, error)

	Close() error
}
