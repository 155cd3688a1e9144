package catalog

// SortByName orders the chain by case-insensitive name with a top-down merge sort.
func (c *Catalog) SortByName() {
	c.head = c.mergeSort(c.head)
	c.tail = c.tailOf(c.head)
	c.order = ByName
}

// mergeSort sorts the chain starting at head and returns the new head.
func (c *Catalog) mergeSort(head int) int {
	if head == nilIdx || c.nodes[head].next == nilIdx {
		return head
	}

	// slow stops at the end of the first half
	slow, fast := head, c.nodes[head].next
	for fast != nilIdx && c.nodes[fast].next != nilIdx {
		slow = c.nodes[slow].next
		fast = c.nodes[c.nodes[fast].next].next
	}
	right := c.nodes[slow].next
	c.nodes[slow].next = nilIdx

	return c.merge(c.mergeSort(head), c.mergeSort(right))
}

// merge joins two name-sorted chains. On equal keys the left node goes first.
func (c *Catalog) merge(left, right int) int {
	head, tail := nilIdx, nilIdx
	push := func(i int) {
		if head == nilIdx {
			head = i
		} else {
			c.nodes[tail].next = i
		}
		tail = i
	}

	for left != nilIdx && right != nilIdx {
		if compareByName(&c.nodes[right].rec, &c.nodes[left].rec) < 0 {
			next := c.nodes[right].next
			push(right)
			right = next
		} else {
			next := c.nodes[left].next
			push(left)
			left = next
		}
	}

	rest := left
	if rest == nilIdx {
		rest = right
	}
	if head == nilIdx {
		return rest
	}
	c.nodes[tail].next = rest
	return head
}
