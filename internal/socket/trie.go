// File: internal/socket/trie.go
// Author: momentics <momentics@gmail.com>
//
// subTrie indexes subscription prefixes for one PUB-side peer the way the
// reference library's own subscription trie does: one node per topic byte,
// a refcount at each node so the same topic can be subscribed more than
// once (e.g. by distinct SUB-side Subscribe calls relayed through a
// multi-hop XSUB) without losing track of how many times it must be
// unsubscribed before the prefix stops matching. No pack example carries
// an equivalent structure, so this is hand-built directly from the
// subscribe/unsubscribe semantics above.

package socket

type subTrieNode struct {
	children map[byte]*subTrieNode
	refcount int
}

type subTrie struct {
	root subTrieNode
}

// Add records one subscription to topic, returning true the first time
// this exact topic becomes active (refcount 0 -> 1).
func (t *subTrie) Add(topic []byte) bool {
	n := &t.root
	for _, b := range topic {
		if n.children == nil {
			n.children = make(map[byte]*subTrieNode)
		}
		c, ok := n.children[b]
		if !ok {
			c = &subTrieNode{}
			n.children[b] = c
		}
		n = c
	}
	n.refcount++
	return n.refcount == 1
}

// Remove drops one subscription to topic, returning true if this was the
// last one (refcount reaches 0) and pruning now-empty trie nodes.
func (t *subTrie) Remove(topic []byte) bool {
	path := make([]*subTrieNode, 1, len(topic)+1)
	path[0] = &t.root
	keys := make([]byte, 0, len(topic))
	n := &t.root
	for _, b := range topic {
		if n.children == nil {
			return false
		}
		c, ok := n.children[b]
		if !ok {
			return false
		}
		path = append(path, c)
		keys = append(keys, b)
		n = c
	}
	if n.refcount == 0 {
		return false
	}
	n.refcount--
	if n.refcount > 0 {
		return false
	}
	for i := len(path) - 1; i > 0; i-- {
		cur := path[i]
		if cur.refcount > 0 || len(cur.children) > 0 {
			break
		}
		delete(path[i-1].children, keys[i-1])
	}
	return true
}

// Match reports whether data starts with any subscribed prefix, including
// the empty-topic subscription that matches everything.
func (t *subTrie) Match(data []byte) bool {
	n := &t.root
	if n.refcount > 0 {
		return true
	}
	for _, b := range data {
		if n.children == nil {
			return false
		}
		c, ok := n.children[b]
		if !ok {
			return false
		}
		if c.refcount > 0 {
			return true
		}
		n = c
	}
	return false
}
