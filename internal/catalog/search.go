package catalog

// FindByName looks up target case-insensitively. The chain must already be
// sorted by name: the scan stops at the first name greater than target. Among
// records with the same key, one named exactly target is preferred.
func (c *Catalog) FindByName(target string) (Record, bool) {
	key := foldName(target)
	var (
		match Record
		found bool
	)
	for i := c.head; i != nilIdx; i = c.nodes[i].next {
		rec := c.nodes[i].rec
		if rec.key > key {
			break
		}
		if rec.key != key {
			continue
		}
		if rec.Name == target {
			return rec, true
		}
		if !found {
			match, found = rec, true
		}
	}
	return match, found
}
