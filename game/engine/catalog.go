package engine

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance bounds how far a misspelt name may be from a suggestion
const maxSuggestionDistance = 3

// Catalog is the universe of elements and recipes of one play session.
// A Catalog is not safe for concurrent mutation; give each session its own.
type Catalog struct {
	name     string
	elements []*Element
	byID     map[ElementID]*Element
	byName   map[string]*Element
	recipes  map[pairKey]*Element
	base     [BaseElementCount]*Element
}

// NewCatalog builds a catalog from a validated recipe book
func NewCatalog(book *RecipeBook) (*Catalog, error) {
	if book == nil {
		return nil, fmt.Errorf("recipe book cannot be nil")
	}
	if err := ValidateRecipeBook(book); err != nil {
		return nil, err
	}

	c := &Catalog{
		name:     book.Name,
		elements: make([]*Element, 0, len(book.Elements)),
		byID:     make(map[ElementID]*Element, len(book.Elements)),
		byName:   make(map[string]*Element, len(book.Elements)),
		recipes:  make(map[pairKey]*Element, len(book.Recipes)),
	}

	baseIdx := 0
	for _, def := range book.Elements {
		el := &Element{
			id:       ElementID{Name: def.Name, ImageKey: def.Image},
			base:     def.Base,
			unlocked: def.Base,
		}
		c.elements = append(c.elements, el)
		c.byID[el.id] = el
		c.byName[normalizeName(def.Name)] = el
		if def.Base {
			c.base[baseIdx] = el
			baseIdx++
		}
	}

	// Wire the recipe table once; it never changes afterwards
	for _, r := range book.Recipes {
		first := c.byName[normalizeName(r.First)]
		second := c.byName[normalizeName(r.Second)]
		result := c.byName[normalizeName(r.Result)]
		c.recipes[newPairKey(first.id, second.id)] = result
	}

	return c, nil
}

// NewDefaultCatalog builds the starter catalog of ten elements
func NewDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultRecipeBook())
	if err != nil {
		panic(fmt.Sprintf("default recipe book is invalid: %v", err))
	}
	return c
}

// Name returns the name of the recipe book the catalog was built from
func (c *Catalog) Name() string {
	return c.name
}

// BaseElements returns the starter elements in order: water, earth, air, fire
func (c *Catalog) BaseElements() (*Element, *Element, *Element, *Element) {
	return c.base[0], c.base[1], c.base[2], c.base[3]
}

// BaseElementList returns the starter elements as a slice
func (c *Catalog) BaseElementList() []*Element {
	return []*Element{c.base[0], c.base[1], c.base[2], c.base[3]}
}

// UnlockedElements returns every unlocked element in catalog order.
// Each call returns a fresh slice.
func (c *Catalog) UnlockedElements() []*Element {
	unlocked := make([]*Element, 0, len(c.elements))
	for _, el := range c.elements {
		if el.unlocked {
			unlocked = append(unlocked, el)
		}
	}
	return unlocked
}

// UnlockedCount returns the number of unlocked elements
func (c *Catalog) UnlockedCount() int {
	count := 0
	for _, el := range c.elements {
		if el.unlocked {
			count++
		}
	}
	return count
}

// All returns every element in catalog order
func (c *Catalog) All() []*Element {
	all := make([]*Element, len(c.elements))
	copy(all, c.elements)
	return all
}

// Len returns the number of elements in the catalog
func (c *Catalog) Len() int {
	return len(c.elements)
}

// Element returns the catalog instance for an identity
func (c *Catalog) Element(id ElementID) (*Element, bool) {
	el, ok := c.byID[id]
	return el, ok
}

// Lookup finds an element by name, ignoring case
func (c *Catalog) Lookup(name string) (*Element, bool) {
	el, ok := c.byName[normalizeName(name)]
	return el, ok
}

// Suggest returns the closest element name to an unknown name, or "" when
// nothing is close enough.
func (c *Catalog) Suggest(name string) string {
	target := normalizeName(name)
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, el := range c.elements {
		d := levenshtein.ComputeDistance(target, normalizeName(el.id.Name))
		if d < bestDist {
			best, bestDist = el.id.Name, d
		}
	}
	return best
}

// RecipesFor returns the partner → result view of the recipe table from one
// element's perspective.
func (c *Catalog) RecipesFor(e *Element) map[ElementID]*Element {
	recipes := make(map[ElementID]*Element)
	if e == nil {
		return recipes
	}
	for key, result := range c.recipes {
		switch e.id {
		case key.a:
			recipes[key.b] = result
		case key.b:
			recipes[key.a] = result
		}
	}
	return recipes
}

// Recipes returns every recipe as definitions sorted by result then operands
func (c *Catalog) Recipes() []RecipeDef {
	defs := make([]RecipeDef, 0, len(c.recipes))
	for key, result := range c.recipes {
		defs = append(defs, RecipeDef{First: key.a.Name, Second: key.b.Name, Result: result.id.Name})
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Result != defs[j].Result {
			return defs[i].Result < defs[j].Result
		}
		if defs[i].First != defs[j].First {
			return defs[i].First < defs[j].First
		}
		return defs[i].Second < defs[j].Second
	})
	return defs
}

// Resolve looks the unordered pair up without changing any state.
// The returned element is always the catalog's own instance.
func (c *Catalog) Resolve(first, second *Element) (*Element, bool) {
	if first == nil || second == nil {
		return nil, false
	}
	result, ok := c.recipes[newPairKey(first.id, second.id)]
	return result, ok
}

// Unlock marks the catalog's instance of e as unlocked. It reports whether
// the flag changed.
func (c *Catalog) Unlock(e *Element) bool {
	if e == nil {
		return false
	}
	el, ok := c.byID[e.id]
	if !ok || el.unlocked {
		return false
	}
	el.unlocked = true
	return true
}

// Match combines two elements. On success the result is unlocked and
// returned; without a recipe Match returns nil and changes nothing.
func (c *Catalog) Match(first, second *Element) *Element {
	result, ok := c.Resolve(first, second)
	if !ok {
		return nil
	}
	c.Unlock(result)
	return result
}
