// Package convert schedules tree-to-Markdown conversions. Small trees
// render in one pass; large trees are split into block-aligned groups
// that render independently with cooperative yields in between, either
// collected into one string or streamed as a lazy fragment sequence.
package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/levindixon/WebMD/internal/doctree"
	"github.com/levindixon/WebMD/internal/markdown"
)

// Mode is the scheduler's one-time processing choice for an input tree.
type Mode int

const (
	ModeDirect Mode = iota
	ModeChunked
	ModeStreaming
)

func (m Mode) String() string {
	switch m {
	case ModeChunked:
		return "chunked"
	case ModeStreaming:
		return "streaming"
	default:
		return "direct"
	}
}

// Converter runs conversions. The zero value works; the logger only
// receives debug notices and recoverable anomalies.
type Converter struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Converter {
	return &Converter{log: log}
}

// Convert serializes a tree to a single Markdown string. It fails with
// a markdown.ResourceError on inconsistent budgets and with a
// markdown.StructuralError when the tree contains a cycle; everything
// else degrades inside the renderer instead of failing.
func (c *Converter) Convert(ctx context.Context, root *doctree.Node, opts markdown.Options) (string, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if doctree.HasCycle(root) {
		return "", &markdown.StructuralError{Reason: "tree contains a cycle"}
	}

	var parts []string
	err := c.run(ctx, root, opts, func(frag string) error {
		parts = append(parts, frag)
		return nil
	})
	if err != nil {
		return "", err
	}
	// Fragments arrive trimmed, so joining on a blank line is exactly
	// the 3+ newline collapse the merge points need.
	return strings.Join(parts, "\n\n"), nil
}

// Stream produces the conversion as a lazy, finite sequence of text
// fragments whose concatenation equals the Convert result. The sequence
// is restartable from scratch only: cancel ctx to abandon it, then
// convert again from the root. The producer goroutine exits at the next
// group boundary after cancellation; the channel is always closed.
func (c *Converter) Stream(ctx context.Context, root *doctree.Node, opts markdown.Options) (<-chan string, error) {
	opts = opts.WithDefaults()
	opts.Streaming = true
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if doctree.HasCycle(root) {
		return nil, &markdown.StructuralError{Reason: "tree contains a cycle"}
	}

	out := make(chan string)
	go func() {
		defer close(out)
		first := true
		_ = c.run(ctx, root, opts, func(frag string) error {
			if !first {
				frag = "\n\n" + frag
			}
			first = false
			select {
			case out <- frag:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()
	return out, nil
}

// ConvertIsolated runs the conversion on a serialized snapshot of the
// tree in its own goroutine: no mutable state crosses the boundary, and
// a panic inside the isolate surfaces as an error instead of crashing
// the caller.
func (c *Converter) ConvertIsolated(ctx context.Context, root *doctree.Node, opts markdown.Options) (string, error) {
	if doctree.HasCycle(root) {
		return "", &markdown.StructuralError{Reason: "tree contains a cycle"}
	}
	snapshot, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("snapshot tree: %w", err)
	}

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("conversion panicked: %v", p)}
			}
		}()
		var tree doctree.Node
		if err := json.Unmarshal(snapshot, &tree); err != nil {
			done <- result{err: fmt.Errorf("restore tree snapshot: %w", err)}
			return
		}
		out, err := c.Convert(ctx, &tree, opts)
		done <- result{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.out, r.err
	}
}

// run renders the tree and hands trimmed fragments to emit in order.
// opts must be defaulted and validated, the tree cycle-checked.
func (c *Converter) run(ctx context.Context, root *doctree.Node, opts markdown.Options, emit func(string) error) error {
	mode := selectMode(root, opts)
	if c.log != nil {
		c.log.Debug("conversion planned",
			"mode", mode.String(),
			"nodes", doctree.Count(root),
			"chunk_size", opts.ChunkSize,
		)
	}

	r := markdown.NewRenderer(opts, c.log)
	if opts.CacheCapacity > 0 {
		r.UseMemo(newFragmentCache(opts.CacheCapacity))
	}

	if mode == ModeDirect {
		if frag := r.Render(root); frag != "" {
			if err := emit(frag); err != nil {
				return err
			}
		}
	} else {
		for i, group := range partitionGroups(root, opts.GroupBudget) {
			if i > 0 {
				// Group boundary: the only legal suspension point.
				if err := ctx.Err(); err != nil {
					return err
				}
				runtime.Gosched()
			}
			// Each group starts at depth zero; the reference table is
			// the renderer's and spans all groups.
			if frag := r.RenderBlocks(group); frag != "" {
				if err := emit(frag); err != nil {
					return err
				}
			}
		}
	}

	if defs := r.Definitions(); defs != "" {
		return emit(defs)
	}
	return nil
}

func selectMode(root *doctree.Node, opts markdown.Options) Mode {
	if opts.Streaming {
		return ModeStreaming
	}
	if doctree.Count(root) > opts.ChunkSize {
		return ModeChunked
	}
	return ModeDirect
}

// partitionGroups splits the block-level children of root into groups
// bounded by a cumulative source-text budget. Cuts happen only at block
// boundaries, so no nesting state ever crosses a group boundary. A root
// that is not a transparent container is a single group.
func partitionGroups(root *doctree.Node, budget int) [][]*doctree.Node {
	if root == nil {
		return nil
	}
	if root.Type == doctree.TextNode || root.Kind != doctree.KindContainer {
		return [][]*doctree.Node{{root}}
	}

	var groups [][]*doctree.Node
	var current []*doctree.Node
	size := 0
	for _, child := range root.Children {
		childSize := len(child.PlainText())
		if len(current) > 0 && size+childSize > budget && cutAllowed(current, child) {
			groups = append(groups, current)
			current = nil
			size = 0
		}
		current = append(current, child)
		size += childSize
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// cutAllowed permits a split only where the renderer would emit a blank
// line anyway: next to a block-level sibling.
func cutAllowed(current []*doctree.Node, next *doctree.Node) bool {
	return markdown.IsBlock(next) || markdown.IsBlock(current[len(current)-1])
}
