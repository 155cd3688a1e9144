package catalog

// SortBySize orders the chain by ascending size with a linked-list quicksort.
// Equal sizes keep no particular order.
func (c *Catalog) SortBySize() {
	c.head = c.quickSort(c.head, c.tailOf(c.head))
	c.tail = c.tailOf(c.head)
	c.order = BySize
}

// quickSort sorts the range head..end, where end is the last node of the
// range and its next index is nilIdx. It returns the new head.
func (c *Catalog) quickSort(head, end int) int {
	if head == nilIdx || head == end {
		return head
	}

	newHead, newEnd, pivot := c.partition(head, end)

	if newHead != pivot {
		prev := newHead
		for c.nodes[prev].next != pivot {
			prev = c.nodes[prev].next
		}
		c.nodes[prev].next = nilIdx

		newHead = c.quickSort(newHead, prev)

		c.nodes[c.tailOf(newHead)].next = pivot
	}

	c.nodes[pivot].next = c.quickSort(c.nodes[pivot].next, newEnd)

	return newHead
}

// partition uses end as the pivot. Nodes not larger than the pivot stay in
// front of it in their original order; larger nodes are moved behind it.
// It returns the head of the smaller chain (the pivot itself if that chain is
// empty), the last node behind the pivot, and the pivot.
func (c *Catalog) partition(head, end int) (newHead, newEnd, pivot int) {
	pivot = end
	newHead = nilIdx
	prev := nilIdx
	tail := pivot

	for cur := head; cur != pivot; {
		if compareBySize(&c.nodes[cur].rec, &c.nodes[pivot].rec) <= 0 {
			if newHead == nilIdx {
				newHead = cur
			}
			prev = cur
			cur = c.nodes[cur].next
			continue
		}

		if prev != nilIdx {
			c.nodes[prev].next = c.nodes[cur].next
		}
		next := c.nodes[cur].next
		c.nodes[cur].next = nilIdx
		c.nodes[tail].next = cur
		tail = cur
		cur = next
	}

	if newHead == nilIdx {
		newHead = pivot
	}
	return newHead, tail, pivot
}
