package markdown

// StructuralError reports an invalid tree shape, such as a node that is
// its own descendant. It aborts the conversion before any output is
// produced.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Reason
}

// ResourceError reports an internally inconsistent configuration, such
// as a non-positive chunk size. It aborts the conversion before any
// traversal begins.
type ResourceError struct {
	Field  string
	Reason string
}

func (e *ResourceError) Error() string {
	return "resource error: " + e.Field + ": " + e.Reason
}
