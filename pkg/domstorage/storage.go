package domstorage

// StorageID identifies a key/value namespace: a security-origin-like tag
// plus a flag separating the local scope from scope types the bridge does
// not support.
type StorageID struct {
	Origin         string `json:"origin"`
	IsLocalStorage bool   `json:"is_local_storage"`
}

// Entry is one key/value pair with the value rendered to its wire text.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store reads and edits entries across namespaces. Operations on non-local
// scopes quietly do nothing; the original system never defined creation
// semantics for them and this bridge preserves that.
type Store struct {
	provider Provider
}

// New creates a Store backed by provider.
func New(provider Provider) *Store {
	return &Store{provider: provider}
}

// Entries lists every entry in the scope's namespace with values rendered
// to text, sorted by key. Non-local scopes yield an empty list.
func (s *Store) Entries(id StorageID) ([]Entry, error) {
	entries := []Entry{}
	if !id.IsLocalStorage {
		return entries, nil
	}

	all, err := s.provider.Namespace(id.Origin).GetAll()
	if err != nil {
		return nil, err
	}

	for _, key := range sortedKeys(all) {
		entries = append(entries, Entry{Key: key, Value: all[key].Text()})
	}
	return entries, nil
}

// SetEntry converts text into the type anchored by the key's existing value
// and commits it. A key with no existing value is rejected with
// UnsupportedError; a text that cannot be converted leaves the stored value
// unchanged and returns TypeMismatchError.
func (s *Store) SetEntry(id StorageID, key, text string) error {
	if !id.IsLocalStorage {
		return nil
	}

	ns := s.provider.Namespace(id.Origin)
	all, err := ns.GetAll()
	if err != nil {
		return err
	}

	existing, ok := all[key]
	if !ok {
		return &UnsupportedError{Key: key}
	}

	converted, err := parseAs(text, existing)
	if err != nil {
		return &TypeMismatchError{Key: key, Value: text, Expected: existing.Kind()}
	}

	return ns.Edit().Put(key, converted).Commit()
}

// RemoveEntry deletes the entry unconditionally. Removing an absent key is
// a no-op, not an error.
func (s *Store) RemoveEntry(id StorageID, key string) error {
	if !id.IsLocalStorage {
		return nil
	}
	return s.provider.Namespace(id.Origin).Edit().Remove(key).Commit()
}
