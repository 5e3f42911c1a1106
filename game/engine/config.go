package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateRecipeBook validates a recipe book for correctness and playability
func ValidateRecipeBook(book *RecipeBook) error {
	if book == nil {
		return fmt.Errorf("config validation: recipe book is required")
	}
	if book.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	// Validate elements
	if len(book.Elements) == 0 {
		return fmt.Errorf("config validation: at least one element is required")
	}
	if len(book.Elements) > MaxElements {
		return fmt.Errorf("config validation: at most %d elements are allowed, got %d", MaxElements, len(book.Elements))
	}

	defs := make(map[string]ElementDef, len(book.Elements))
	baseCount := 0
	for i, el := range book.Elements {
		key := normalizeName(el.Name)
		if key == "" {
			return fmt.Errorf("config validation: element %d has no name", i+1)
		}
		if _, dup := defs[key]; dup {
			return fmt.Errorf("config validation: duplicate element name '%s'", el.Name)
		}
		defs[key] = el
		if el.Base {
			baseCount++
		}
	}
	if baseCount != BaseElementCount {
		return fmt.Errorf("config validation: exactly %d base elements are required, got %d", BaseElementCount, baseCount)
	}

	// Validate recipes
	pairs := make(map[[2]string]bool, len(book.Recipes))
	for i, r := range book.Recipes {
		for _, operand := range []string{r.First, r.Second, r.Result} {
			if _, ok := defs[normalizeName(operand)]; !ok {
				return fmt.Errorf("config validation: recipe %d references unknown element '%s'", i+1, operand)
			}
		}
		if defs[normalizeName(r.Result)].Base {
			return fmt.Errorf("config validation: recipe %d produces base element '%s'", i+1, r.Result)
		}

		a, b := normalizeName(r.First), normalizeName(r.Second)
		if b < a {
			a, b = b, a
		}
		if pairs[[2]string{a, b}] {
			return fmt.Errorf("config validation: duplicate recipe for %s + %s", r.First, r.Second)
		}
		pairs[[2]string{a, b}] = true
	}

	// Validate board geometry; a 2x2 block of tokens must fit for the base spawn
	board := book.Board
	if board.TokenWidth <= 0 || board.TokenHeight <= 0 {
		return fmt.Errorf("config validation: board token size must be positive")
	}
	if board.Inset < 0 {
		return fmt.Errorf("config validation: board inset cannot be negative")
	}
	if board.Width < 2*(board.TokenWidth+board.Inset) || board.Height < 2*(board.TokenHeight+board.Inset) {
		return fmt.Errorf("config validation: board %gx%g is too small for a 2x2 block of %gx%g tokens",
			board.Width, board.Height, board.TokenWidth, board.TokenHeight)
	}

	// Validate format strings
	if book.Messages.Discovered != "" && !strings.Contains(book.Messages.Discovered, "%s") {
		return fmt.Errorf("config validation: messages.discovered must contain %%s for the element name")
	}
	if book.Messages.Reaction != "" && !strings.Contains(book.Messages.Reaction, "%s") {
		return fmt.Errorf("config validation: messages.reaction must contain %%s for the element name")
	}

	return nil
}

// ApplyDefaults fills unset board geometry and messages
func ApplyDefaults(book *RecipeBook) {
	if book.Board.Width == 0 {
		book.Board.Width = DefaultBoardWidth
	}
	if book.Board.Height == 0 {
		book.Board.Height = DefaultBoardHeight
	}
	if book.Board.TokenWidth == 0 {
		book.Board.TokenWidth = DefaultTokenWidth
	}
	if book.Board.TokenHeight == 0 {
		book.Board.TokenHeight = DefaultTokenHeight
	}
	if book.Board.Inset == 0 {
		book.Board.Inset = DefaultTokenInset
	}
	if book.Messages.Welcome == "" {
		book.Messages.Welcome = "Double tap the board to summon water, earth, air and fire."
	}
	if book.Messages.Discovered == "" {
		book.Messages.Discovered = "New element discovered: %s!"
	}
	if book.Messages.Reaction == "" {
		book.Messages.Reaction = "Combined into %s"
	}
	if book.Messages.NoReaction == "" {
		book.Messages.NoReaction = "Nothing happens."
	}
	if book.Messages.BoardFull == "" {
		book.Messages.BoardFull = "Playing area filled"
	}
}

// DefaultRecipeBook returns the starter book: four base elements and the six
// results of combining them pairwise.
func DefaultRecipeBook() *RecipeBook {
	book := &RecipeBook{
		Name:        "Classic",
		Description: "The four classical elements and their six pairwise combinations",
		Elements: []ElementDef{
			{Name: "Water", Image: "water", Base: true},
			{Name: "Earth", Image: "earth", Base: true},
			{Name: "Air", Image: "air", Base: true},
			{Name: "Fire", Image: "fire", Base: true},
			{Name: "Swamp", Image: "swamp"},
			{Name: "Alcohol", Image: "alcohol"},
			{Name: "Steam", Image: "steam"},
			{Name: "Lava", Image: "lava"},
			{Name: "Energy", Image: "energy"},
			{Name: "Dust", Image: "dust"},
		},
		Recipes: []RecipeDef{
			{First: "Water", Second: "Earth", Result: "Swamp"},
			{First: "Water", Second: "Fire", Result: "Alcohol"},
			{First: "Water", Second: "Air", Result: "Steam"},
			{First: "Earth", Second: "Fire", Result: "Lava"},
			{First: "Earth", Second: "Air", Result: "Dust"},
			{First: "Air", Second: "Fire", Result: "Energy"},
		},
	}
	ApplyDefaults(book)
	return book
}

// ParseRecipeBook decodes a recipe book. Format is "json" or "yaml".
func ParseRecipeBook(data []byte, format string) (*RecipeBook, error) {
	var book RecipeBook
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &book); err != nil {
			return nil, fmt.Errorf("failed to parse JSON recipe book: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &book); err != nil {
			return nil, fmt.Errorf("failed to parse YAML recipe book: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported recipe book format '%s'", format)
	}

	ApplyDefaults(&book)
	if err := ValidateRecipeBook(&book); err != nil {
		return nil, err
	}
	return &book, nil
}

// FormatFromPath returns the recipe book format implied by a file extension
func FormatFromPath(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", true
	case ".yaml", ".yml":
		return "yaml", true
	default:
		return "", false
	}
}

// LoadRecipeBook loads and validates a recipe book file
func LoadRecipeBook(path string) (*RecipeBook, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported recipe book file '%s'", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	book, err := ParseRecipeBook(data, format)
	if err != nil {
		return nil, fmt.Errorf("invalid recipe book '%s': %w", filepath.Base(path), err)
	}
	return book, nil
}

// Clone returns a deep copy of the recipe book
func (b *RecipeBook) Clone() *RecipeBook {
	c := *b
	c.Elements = append([]ElementDef(nil), b.Elements...)
	c.Recipes = append([]RecipeDef(nil), b.Recipes...)
	return &c
}

// BaseNames returns the names of the base elements in declaration order
func (b *RecipeBook) BaseNames() []string {
	var names []string
	for _, el := range b.Elements {
		if el.Base {
			names = append(names, el.Name)
		}
	}
	return names
}
