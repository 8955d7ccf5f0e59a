package contact

// Handle is the externally visible, non-zero contact identifier.
// The zero Handle means the contact has not been persisted yet.
type Handle uint32

// StorageKey is the zero-based row key of a contact in storage.
type StorageKey uint32

// ToStorageKey converts a handle to its storage key.
// Passing the zero handle is a programming error and panics.
func ToStorageKey(h Handle) StorageKey {
	if h == 0 {
		panic("contact: zero handle has no storage key")
	}
	return StorageKey(h - 1)
}

// ToHandle converts a storage key to the handle exposed to callers.
func ToHandle(k StorageKey) Handle {
	return Handle(k + 1)
}

// Key is shorthand for ToStorageKey(h).
func (h Handle) Key() StorageKey {
	return ToStorageKey(h)
}

// CollectionHandle identifies a contact collection. It follows the same
// offset-by-one scheme as Handle.
type CollectionHandle uint32

// Key returns the zero-based storage key of the collection.
func (h CollectionHandle) Key() StorageKey {
	if h == 0 {
		panic("contact: zero collection handle has no storage key")
	}
	return StorageKey(h - 1)
}

// Identity names a singleton identity slot.
type Identity int

const (
	// SelfContact is the slot holding the device owner's own contact.
	SelfContact Identity = iota
)

// DefaultManagerURI qualifies contact references that belong to this store.
const DefaultManagerURI = "org.roach88.contactdb"
