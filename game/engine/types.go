package engine

import "time"

const (
	// Board defaults match a portrait phone screen
	DefaultBoardWidth  = 390.0
	DefaultBoardHeight = 700.0
	DefaultTokenWidth  = 60.0
	DefaultTokenHeight = 80.0
	DefaultTokenInset  = 5.0

	// Validation constants
	BaseElementCount = 4
	MaxElements      = 500
	MaxAddElements   = 50
)

// ElementID is the identity of an element. Two elements are the same element
// exactly when their IDs are equal.
type ElementID struct {
	Name     string `json:"name" yaml:"name"`
	ImageKey string `json:"image" yaml:"image"`
}

// Point is a position on the board
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Token is one element placed on the board
type Token struct {
	ID      string    `json:"id"`
	Element ElementID `json:"element"`
	Center  Point     `json:"center"`
}

// ElementDef declares one element of a recipe book
type ElementDef struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`
	Base  bool   `json:"base,omitempty" yaml:"base,omitempty"`
}

// RecipeDef declares "first + second = result". Operand order is irrelevant.
type RecipeDef struct {
	First  string `json:"first" yaml:"first"`
	Second string `json:"second" yaml:"second"`
	Result string `json:"result" yaml:"result"`
}

// BoardConfig describes the play surface geometry
type BoardConfig struct {
	Width       float64 `json:"width" yaml:"width"`
	Height      float64 `json:"height" yaml:"height"`
	TokenWidth  float64 `json:"token_width" yaml:"token_width"`
	TokenHeight float64 `json:"token_height" yaml:"token_height"`
	Inset       float64 `json:"inset" yaml:"inset"`
}

// RecipeBook represents a catalog definition loaded from JSON or YAML
type RecipeBook struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Elements    []ElementDef `json:"elements" yaml:"elements"`
	Recipes     []RecipeDef  `json:"recipes" yaml:"recipes"`
	Board       BoardConfig  `json:"board" yaml:"board"`
	Messages    struct {
		Welcome    string `json:"welcome" yaml:"welcome"`
		Discovered string `json:"discovered" yaml:"discovered"`
		Reaction   string `json:"reaction" yaml:"reaction"`
		NoReaction string `json:"no_reaction" yaml:"no_reaction"`
		BoardFull  string `json:"board_full" yaml:"board_full"`
	} `json:"messages" yaml:"messages"`
}

// CombinationEntry records one combination attempt
type CombinationEntry struct {
	Number    int    `json:"number"`
	First     string `json:"first"`
	Second    string `json:"second"`
	Result    string `json:"result,omitempty"`
	Discovery bool   `json:"discovery,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Matched reports whether the attempt produced an element
func (c CombinationEntry) Matched() bool {
	return c.Result != ""
}

// MoveOutcome describes what happened after a token was dropped
type MoveOutcome struct {
	Token    Token             `json:"token"`
	Contact  bool              `json:"contact"`
	Reaction *CombinationEntry `json:"reaction,omitempty"`
	Result   *Token            `json:"result,omitempty"`
	Consumed []string          `json:"consumed,omitempty"`
}

// GameState is a snapshot of one session's game
type GameState struct {
	ConfigName        string            `json:"config_name"`
	Board             BoardConfig       `json:"board"`
	Tokens            []Token           `json:"tokens"`
	Capacity          int               `json:"capacity"`
	Unlocked          []ElementID       `json:"unlocked"`
	DiscoveredCount   int               `json:"discovered_count"`
	TotalElements     int               `json:"total_elements"`
	Complete          bool              `json:"complete"`
	Message           string            `json:"message"`
	TotalCombinations int               `json:"total_combinations"`
	LastCombination   *CombinationEntry `json:"last_combination,omitempty"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
