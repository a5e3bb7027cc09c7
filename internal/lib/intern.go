package lib

// Interner gives every unique string a dense index starting at 0, in insertion order.
// It backs the node arenas: attribute slices are indexed by the interned node ID.
// Unlike the Set it is not thread-safe, an Interner belongs to a single graph.
type Interner struct {
	ids  map[string]int
	keys []string
}

func NewInterner() *Interner {
	return &Interner{
		ids:  make(map[string]int),
		keys: []string{},
	}
}

// Intern returns the index for str, allocating the next one if str is new.
func (in *Interner) Intern(str string) (index int) {
	var ok bool
	if index, ok = in.ids[str]; !ok {
		index = len(in.keys)
		in.ids[str] = index
		in.keys = append(in.keys, str)
	}
	return index
}

// Index returns the index of str and whether it has been interned.
func (in *Interner) Index(str string) (int, bool) {
	index, ok := in.ids[str]
	return index, ok
}

// Key returns the string stored at index.
func (in *Interner) Key(index int) string {
	return in.keys[index]
}

func (in *Interner) Len() int {
	return len(in.keys)
}

// Clone returns an independent copy.
func (in *Interner) Clone() *Interner {
	c := &Interner{
		ids:  make(map[string]int, len(in.ids)),
		keys: make([]string, len(in.keys)),
	}
	copy(c.keys, in.keys)
	for k, v := range in.ids {
		c.ids[k] = v
	}
	return c
}
