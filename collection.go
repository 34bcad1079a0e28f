package dsort

// Domain is the half-open element index range a part covers within its
// collection.
type Domain struct {
	Start int
	End   int
}

// Len returns the number of elements the domain spans.
func (d Domain) Len() int {
	return d.End - d.Start
}

// Part is one placed chunk of a collection.
type Part struct {
	Chunk  Chunk
	Domain Domain
	Worker string
}

// Collection is a distributed array or table: an ordered set of parts whose
// domains concatenate without gaps. Collections are built once and never
// mutated.
type Collection struct {
	parts []Part
}

// NewCollection wraps existing chunks in a collection, deriving each part's
// domain from the chunk lengths in order. Parts carry no worker assignment
// until sorted.
func NewCollection(strat Strategy, chunks ...Chunk) *Collection {
	return assembleCollection(strat, chunks, nil)
}

func assembleCollection(strat Strategy, chunks []Chunk, workers []string) *Collection {
	parts := make([]Part, len(chunks))
	offset := 0
	for i, c := range chunks {
		n := strat.Length(c)
		parts[i] = Part{
			Chunk:  c,
			Domain: Domain{Start: offset, End: offset + n},
		}
		if workers != nil {
			parts[i].Worker = workers[i]
		}
		offset += n
	}
	return &Collection{parts: parts}
}

// Parts returns the collection's parts in domain order.
func (c *Collection) Parts() []Part {
	out := make([]Part, len(c.parts))
	copy(out, c.parts)
	return out
}

// Chunks returns the collection's chunk payloads in domain order.
func (c *Collection) Chunks() []Chunk {
	out := make([]Chunk, len(c.parts))
	for i, p := range c.parts {
		out[i] = p.Chunk
	}
	return out
}

// Len returns the total number of elements across all parts.
func (c *Collection) Len() int {
	if len(c.parts) == 0 {
		return 0
	}
	return c.parts[len(c.parts)-1].Domain.End
}

// NumParts returns the number of parts.
func (c *Collection) NumParts() int {
	return len(c.parts)
}
