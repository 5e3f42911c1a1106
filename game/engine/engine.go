package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBoardFull      = errors.New("playing area filled")
	ErrTokenNotFound  = errors.New("token not found")
	ErrUnknownElement = errors.New("unknown element")
	ErrElementLocked  = errors.New("element is locked")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Catalog queries
	Catalog() *Catalog
	BaseElements() (*Element, *Element, *Element, *Element)
	UnlockedElements() []*Element
	Combine(first, second string) (*Element, CombinationEntry, error)

	// Board operations
	SpawnBase(at Point) ([]Token, error)
	AddElements(names []string) ([]Token, error)
	MoveToken(id string, to Point) (*MoveOutcome, error)
	CopyToken(id string) ([]Token, error)
	RemoveToken(id string) error
	Clear() int
	Align()
	Tokens() []Token
	Capacity() int

	// Game state management
	GetState() *GameState
	Reset() *GameState
	IsComplete() bool

	// Configuration
	GetConfig() *RecipeBook

	// History
	GetHistory() []CombinationEntry
	GetLastCombination() *CombinationEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	book    *RecipeBook
	catalog *Catalog
	tokens  []Token
	history []CombinationEntry
	message string
	rng     *rand.Rand
	updated time.Time
}

// NewEngine creates a new game engine with the provided recipe book
func NewEngine(book *RecipeBook) (*GameEngine, error) {
	catalog, err := NewCatalog(book)
	if err != nil {
		return nil, err
	}

	seed := uint64(time.Now().UnixNano())
	return &GameEngine{
		book:    book,
		catalog: catalog,
		tokens:  []Token{},
		history: []CombinationEntry{},
		message: book.Messages.Welcome,
		rng:     rand.New(rand.NewPCG(seed, seed>>1)),
		updated: time.Now(),
	}, nil
}

// NewEngineWithDefaults creates a new game engine with the starter recipe book
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultRecipeBook())
	if err != nil {
		panic(fmt.Sprintf("default recipe book is invalid: %v", err))
	}
	return e
}

// SetSeed makes random token placement reproducible
func (e *GameEngine) SetSeed(seed uint64) {
	e.rng = rand.New(rand.NewPCG(seed, seed>>1))
}

// Catalog returns the session's catalog
func (e *GameEngine) Catalog() *Catalog {
	return e.catalog
}

// BaseElements returns water, earth, air and fire
func (e *GameEngine) BaseElements() (*Element, *Element, *Element, *Element) {
	return e.catalog.BaseElements()
}

// UnlockedElements returns the current unlock picker contents
func (e *GameEngine) UnlockedElements() []*Element {
	return e.catalog.UnlockedElements()
}

// GetConfig returns the recipe book
func (e *GameEngine) GetConfig() *RecipeBook {
	return e.book
}

// Capacity returns how many tokens fit on the board
func (e *GameEngine) Capacity() int {
	b := e.book.Board
	return int(b.Width/b.TokenWidth) * int(b.Height/b.TokenHeight)
}

// Tokens returns a copy of the tokens in board order
func (e *GameEngine) Tokens() []Token {
	tokens := make([]Token, len(e.tokens))
	copy(tokens, e.tokens)
	return tokens
}

// Combine resolves two elements by name without touching the board.
// Both elements must already be unlocked; rejected attempts are not recorded.
func (e *GameEngine) Combine(first, second string) (*Element, CombinationEntry, error) {
	a, err := e.lookupUnlocked(first)
	if err != nil {
		return nil, CombinationEntry{}, err
	}
	b, err := e.lookupUnlocked(second)
	if err != nil {
		return nil, CombinationEntry{}, err
	}

	result, entry := e.match(a, b)
	return result, entry, nil
}

// SpawnBase places the four base elements in a square around a point
func (e *GameEngine) SpawnBase(at Point) ([]Token, error) {
	if len(e.tokens) > e.Capacity()-BaseElementCount {
		e.message = e.book.Messages.BoardFull
		return nil, ErrBoardFull
	}

	b := e.book.Board
	hIndent := b.TokenWidth + b.Inset
	vIndent := b.TokenHeight + b.Inset
	x := clamp(at.X, hIndent, b.Width-hIndent)
	y := clamp(at.Y, vIndent, b.Height-vIndent)

	h := b.TokenWidth/2 + b.Inset
	v := b.TokenHeight/2 + b.Inset
	water, earth, air, fire := e.catalog.BaseElements()
	spawned := []Token{
		e.newToken(water, Point{X: x - h, Y: y - v}),
		e.newToken(earth, Point{X: x + h, Y: y - v}),
		e.newToken(air, Point{X: x + h, Y: y + v}),
		e.newToken(fire, Point{X: x - h, Y: y + v}),
	}
	e.tokens = append(e.tokens, spawned...)
	e.touch("")
	return spawned, nil
}

// AddElements places unlocked elements picked by name at random positions
func (e *GameEngine) AddElements(names []string) ([]Token, error) {
	if len(names) == 0 {
		return []Token{}, nil
	}
	if len(names) > MaxAddElements {
		return nil, fmt.Errorf("at most %d elements can be added at once, got %d", MaxAddElements, len(names))
	}

	picked := make([]*Element, 0, len(names))
	for _, name := range names {
		el, err := e.lookupUnlocked(name)
		if err != nil {
			return nil, err
		}
		picked = append(picked, el)
	}

	if len(e.tokens)+len(picked) > e.Capacity() {
		e.message = e.book.Messages.BoardFull
		return nil, ErrBoardFull
	}

	b := e.book.Board
	halfW, halfH := b.TokenWidth/2, b.TokenHeight/2
	spawned := make([]Token, 0, len(picked))
	for _, el := range picked {
		center := Point{
			X: halfW + e.rng.Float64()*(b.Width-b.TokenWidth),
			Y: halfH + e.rng.Float64()*(b.Height-b.TokenHeight),
		}
		spawned = append(spawned, e.newToken(el, center))
	}
	e.tokens = append(e.tokens, spawned...)
	e.touch("")
	return spawned, nil
}

// MoveToken drops a token at a new position and lets it react with the
// first overlapping token that shares a recipe with it.
func (e *GameEngine) MoveToken(id string, to Point) (*MoveOutcome, error) {
	idx := e.indexOf(id)
	if idx < 0 {
		return nil, ErrTokenNotFound
	}

	e.tokens[idx].Center = e.clampInside(to)
	moved := e.tokens[idx]
	outcome := &MoveOutcome{Token: moved}

	movedRect := e.rectOf(moved)
	for _, other := range e.tokens {
		if other.ID == moved.ID || !movedRect.OverlapsHalf(e.rectOf(other)) {
			continue
		}
		outcome.Contact = true

		a, _ := e.catalog.Element(moved.Element)
		b, _ := e.catalog.Element(other.Element)
		result, entry := e.match(a, b)
		if result == nil {
			outcome.Reaction = &entry
			continue
		}

		e.removeTokens(moved.ID, other.ID)
		created := e.newToken(result, moved.Center)
		e.tokens = append(e.tokens, created)
		outcome.Reaction = &entry
		outcome.Result = &created
		outcome.Consumed = []string{moved.ID, other.ID}
		return outcome, nil
	}

	if outcome.Contact {
		e.message = e.book.Messages.NoReaction
	} else {
		e.touch("")
	}
	return outcome, nil
}

// CopyToken splits a token into two copies of the same element
func (e *GameEngine) CopyToken(id string) ([]Token, error) {
	idx := e.indexOf(id)
	if idx < 0 {
		return nil, ErrTokenNotFound
	}
	if len(e.tokens) >= e.Capacity() {
		e.message = e.book.Messages.BoardFull
		return nil, ErrBoardFull
	}

	original := e.tokens[idx]
	el, _ := e.catalog.Element(original.Element)
	b := e.book.Board

	hOffset := b.TokenWidth / 4
	if e.rng.IntN(2) == 0 {
		hOffset = -hOffset
	}
	vOffset := b.TokenHeight/2 + b.Inset
	c := original.Center
	copies := []Token{
		e.newToken(el, e.clampInside(Point{X: c.X + hOffset, Y: c.Y - vOffset})),
		e.newToken(el, e.clampInside(Point{X: c.X - hOffset, Y: c.Y + vOffset})),
	}

	e.removeTokens(original.ID)
	e.tokens = append(e.tokens, copies...)
	e.touch("")
	return copies, nil
}

// RemoveToken deletes one token from the board
func (e *GameEngine) RemoveToken(id string) error {
	if e.indexOf(id) < 0 {
		return ErrTokenNotFound
	}
	e.removeTokens(id)
	e.touch("")
	return nil
}

// Clear removes every token and returns how many were removed
func (e *GameEngine) Clear() int {
	n := len(e.tokens)
	e.tokens = []Token{}
	e.touch("")
	return n
}

// Align arranges all tokens on an evenly spaced grid, row by row
func (e *GameEngine) Align() {
	b := e.book.Board
	perRow := int(b.Width / b.TokenWidth)
	perColumn := int(b.Height / b.TokenHeight)

	hInset, vInset := 0.0, 0.0
	if perRow > 1 {
		hInset = (b.Width - float64(perRow)*b.TokenWidth) / float64(perRow-1)
	}
	if perColumn > 1 {
		vInset = (b.Height - float64(perColumn)*b.TokenHeight) / float64(perColumn-1)
	}

	column, row := 0, 0
	for i := range e.tokens {
		if i != 0 && i%perRow == 0 {
			column = 0
			row++
		}
		e.tokens[i].Center = Point{
			X: math.Floor(b.TokenWidth/2 + b.TokenWidth*float64(column) + math.Floor(hInset*float64(column))),
			Y: math.Floor(b.TokenHeight/2 + b.TokenHeight*float64(row) + math.Floor(vInset*float64(row))),
		}
		column++
	}
	e.touch("")
}

// GetState returns a snapshot of the game state
func (e *GameEngine) GetState() *GameState {
	unlocked := e.catalog.UnlockedElements()
	ids := make([]ElementID, 0, len(unlocked))
	for _, el := range unlocked {
		ids = append(ids, el.id)
	}

	return &GameState{
		ConfigName:        e.book.Name,
		Board:             e.book.Board,
		Tokens:            e.Tokens(),
		Capacity:          e.Capacity(),
		Unlocked:          ids,
		DiscoveredCount:   len(ids),
		TotalElements:     e.catalog.Len(),
		Complete:          e.IsComplete(),
		Message:           e.message,
		TotalCombinations: len(e.history),
		LastCombination:   e.GetLastCombination(),
		UpdatedAt:         e.updated,
	}
}

// Reset rebuilds the catalog so only the base elements are unlocked, and
// clears the board. Combination history is kept.
func (e *GameEngine) Reset() *GameState {
	catalog, err := NewCatalog(e.book)
	if err != nil {
		// The book was validated when the engine was built
		panic(fmt.Sprintf("recipe book '%s' became invalid: %v", e.book.Name, err))
	}
	e.catalog = catalog
	e.tokens = []Token{}
	e.touch(e.book.Messages.Welcome)
	return e.GetState()
}

// IsComplete reports whether every discoverable element is unlocked
func (e *GameEngine) IsComplete() bool {
	return e.catalog.UnlockedCount() >= CountDiscoverable(e.catalog)
}

// GetHistory returns the complete combination history
func (e *GameEngine) GetHistory() []CombinationEntry {
	return e.history
}

// GetLastCombination returns the last combination attempt, or nil if none
func (e *GameEngine) GetLastCombination() *CombinationEntry {
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}

// match runs the resolver and records the attempt
func (e *GameEngine) match(a, b *Element) (*Element, CombinationEntry) {
	entry := CombinationEntry{
		Number:    len(e.history) + 1,
		First:     a.Name(),
		Second:    b.Name(),
		Timestamp: time.Now().Unix(),
	}

	result, ok := e.catalog.Resolve(a, b)
	if ok {
		entry.Result = result.Name()
		entry.Discovery = e.catalog.Unlock(result)
	}
	e.history = append(e.history, entry)

	switch {
	case !ok:
		e.touch(e.book.Messages.NoReaction)
	case entry.Discovery:
		e.touch(fmt.Sprintf(e.book.Messages.Discovered, result.Name()))
	default:
		e.touch(fmt.Sprintf(e.book.Messages.Reaction, result.Name()))
	}

	if !ok {
		return nil, entry
	}
	return result, entry
}

func (e *GameEngine) lookup(name string) (*Element, error) {
	el, ok := e.catalog.Lookup(name)
	if !ok {
		if s := e.catalog.Suggest(name); s != "" {
			return nil, fmt.Errorf("%w: '%s' (did you mean '%s'?)", ErrUnknownElement, name, s)
		}
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownElement, name)
	}
	return el, nil
}

func (e *GameEngine) lookupUnlocked(name string) (*Element, error) {
	el, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	if !el.unlocked {
		return nil, fmt.Errorf("%w: %s", ErrElementLocked, el.Name())
	}
	return el, nil
}

func (e *GameEngine) newToken(el *Element, center Point) Token {
	return Token{ID: uuid.NewString(), Element: el.id, Center: center}
}

func (e *GameEngine) rectOf(t Token) Rect {
	return RectAround(t.Center, e.book.Board.TokenWidth, e.book.Board.TokenHeight)
}

// clampInside keeps a token centre within the board
func (e *GameEngine) clampInside(p Point) Point {
	b := e.book.Board
	halfW, halfH := b.TokenWidth/2, b.TokenHeight/2
	return Point{
		X: clamp(p.X, halfW, b.Width-halfW),
		Y: clamp(p.Y, halfH, b.Height-halfH),
	}
}

func (e *GameEngine) indexOf(id string) int {
	for i, t := range e.tokens {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (e *GameEngine) removeTokens(ids ...string) {
	kept := e.tokens[:0]
	for _, t := range e.tokens {
		drop := false
		for _, id := range ids {
			if t.ID == id {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, t)
		}
	}
	e.tokens = kept
}

// touch records a state change; an empty message keeps the current one
func (e *GameEngine) touch(message string) {
	if message != "" {
		e.message = message
	}
	e.updated = time.Now()
}
