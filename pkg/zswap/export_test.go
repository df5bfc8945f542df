package zswap

// SetEntryAllocFail installs a hook that makes entry-record reservation
// fail when it returns true. Test-only.
func (c *Cache) SetEntryAllocFail(f func() bool) {
	c.entryAllocFail = f
}

// TmppageDrain empties the scratch page ring and returns the frames so
// a test can starve the writeback fallback. Give them back with
// TmppageRefill. Test-only.
func (c *Cache) TmppageDrain() [][]byte {
	var frames [][]byte

	for {
		f := c.tmppages.take()
		if f == nil {
			return frames
		}

		frames = append(frames, f)
	}
}

// TmppageRefill returns frames drained by TmppageDrain. Test-only.
func (c *Cache) TmppageRefill(frames [][]byte) {
	for _, f := range frames {
		c.tmppages.give(f)
	}
}
