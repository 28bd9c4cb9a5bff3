package parserdb

// StringID is an interned string handle. Within one DB, identical text
// always maps to the same id, so name comparisons are integer comparisons.
type StringID int

// NoString is the absent-string sentinel.
const NoString StringID = -1

// Interner deduplicates identifier and literal strings for one DB.
type Interner struct {
	ids  map[string]StringID
	strs []string
}

func newInterner() Interner {
	return Interner{ids: make(map[string]StringID)}
}

// Intern returns the id for s, allocating one on first sight.
func (in *Interner) Intern(s string) StringID {
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := StringID(len(in.strs))
	in.strs = append(in.strs, s)
	in.ids[s] = id
	return id
}

// Lookup returns the id for s without allocating.
func (in *Interner) Lookup(s string) (StringID, bool) {
	id, ok := in.ids[s]
	return id, ok
}

// Get returns the text for an id. NoString yields the empty string.
func (in *Interner) Get(id StringID) string {
	if id == NoString {
		return ""
	}
	return in.strs[id]
}
