package colorenc

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of descriptions a Parser remembers.
const DefaultCacheSize = 64

// Parser parses descriptions and remembers recent results.
// A Parser is safe for concurrent use.
type Parser struct {
	cache *lru.Cache[string, Encoding]
}

// NewParser returns a parser remembering up to size descriptions.
func NewParser(size int) (*Parser, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, Encoding](size)
	if err != nil {
		return nil, err
	}
	return &Parser{cache: c}, nil
}

// Parse behaves like ParseDescription. Failures are not cached.
func (p *Parser) Parse(desc string) (Encoding, error) {
	if enc, ok := p.cache.Get(desc); ok {
		return enc, nil
	}
	enc, err := ParseDescription(desc)
	if err != nil {
		return Encoding{}, err
	}
	p.cache.Add(desc, enc)
	return enc, nil
}

// Len returns the number of cached descriptions.
func (p *Parser) Len() int {
	return p.cache.Len()
}
