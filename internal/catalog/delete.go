package catalog

// DeleteByName removes the record matching target (case-insensitive) from the
// chain and its file from disk. The chain does not need to be sorted. A record
// named exactly target wins over one that only matches ignoring case.
//
// When nothing matches it returns ErrNotFound without touching the chain or
// the filesystem. When the removal fails it returns the matched record with a
// *DeleteError; whether the record stays cataloged depends on the policy.
func (c *Catalog) DeleteByName(target string) (Record, error) {
	prev, i := c.lookup(target)
	if i == nilIdx {
		return Record{}, ErrNotFound
	}

	rec := c.nodes[i].rec
	path := c.Path(rec.Name)

	if c.policy == PolicyStrict {
		if err := c.remove(path); err != nil {
			return rec, &DeleteError{Record: rec, Path: path, Err: err}
		}
		c.unlink(prev, i)
		c.release(i)
		return rec, nil
	}

	c.unlink(prev, i)
	c.release(i)
	if err := c.remove(path); err != nil {
		return rec, &DeleteError{Record: rec, Path: path, Unlinked: true, Err: err}
	}
	return rec, nil
}

func (c *Catalog) remove(path string) error {
	if c.remover == nil {
		return nil
	}
	return c.remover.Remove(path)
}

// lookup returns the first record named exactly target, or else the first one
// whose key matches, together with its predecessor.
func (c *Catalog) lookup(target string) (prev, i int) {
	key := foldName(target)
	prev, i = nilIdx, nilIdx
	for p, j := nilIdx, c.head; j != nilIdx; p, j = j, c.nodes[j].next {
		rec := &c.nodes[j].rec
		if rec.key != key {
			continue
		}
		if rec.Name == target {
			return p, j
		}
		if i == nilIdx {
			prev, i = p, j
		}
	}
	return prev, i
}
