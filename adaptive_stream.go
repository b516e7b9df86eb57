package gtuber

// ByteRange is an inclusive [Start, End] byte range within a segment file.
// A zero-value ByteRange (End <= Start) means "not present".
type ByteRange struct {
	Start uint64
	End   uint64
}

// Valid reports whether the range carries real bounds (End > Start), per
// spec.md's "present iff end > start" rule.
func (r ByteRange) Valid() bool {
	return r.End > r.Start
}

// AdaptiveStream extends Stream with the metadata needed to reference a
// single media segment range out of a DASH or HLS manifest.
type AdaptiveStream struct {
	Stream

	ManifestType ManifestType

	// InitRange is the byte range of the initialization segment.
	InitRange ByteRange
	// IndexRange is the byte range of the sidx/index block.
	IndexRange ByteRange
}
