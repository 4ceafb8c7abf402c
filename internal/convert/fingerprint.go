package convert

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/levindixon/WebMD/internal/doctree"
)

// How much text feeds the fingerprint. Enough to tell repeated page
// templates apart without walking megabytes of prose.
const fingerprintSample = 64

// fingerprint summarizes a subtree: every node's kind and depth, the
// rendering-relevant attributes, a truncated text sample and the total
// text length. Two subtrees may only share a fingerprint when they
// render identically; the sample cap means deep identical prose hashes
// cheaply.
func fingerprint(n *doctree.Node) uint64 {
	h := fnv.New64a()

	var sampled, total int
	var walk func(n *doctree.Node, depth byte)
	walk = func(n *doctree.Node, depth byte) {
		h.Write([]byte{depth, byte(n.Type), byte(n.Kind)})
		if n.Type == doctree.TextNode {
			total += len(n.Text)
			if sampled < fingerprintSample {
				take := fingerprintSample - sampled
				if take > len(n.Text) {
					take = len(n.Text)
				}
				h.Write([]byte(n.Text[:take]))
				sampled += take
			}
			return
		}
		// Link and image targets change the output without changing the
		// text, so they must feed the hash.
		for _, key := range []string{"href", "src", "class", "align", "colspan", "rowspan"} {
			if v := n.Attribute(key); v != "" {
				h.Write([]byte{0})
				h.Write([]byte(v))
			}
		}
		for _, c := range n.Children {
			if c != nil {
				walk(c, depth+1)
			}
		}
	}
	walk(n, 0)

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(total))
	h.Write(lenBuf[:])
	return h.Sum64()
}
