// Package engine provides the core game logic for the Alchemy element-merging game.
//
// The engine package implements the game mechanics including:
//   - The element catalog and its unlock state
//   - Pairwise recipe lookup and the combination resolver
//   - A headless play board of element tokens with the 50% overlap rule
//   - Recipe book loading and validation
//
// Core Types:
//
// Catalog owns every Element of a play session together with the recipe graph.
// An Element is identified by its ElementID (name plus image key); the mutable
// unlocked flag never takes part in equality. GameEngine wraps one Catalog with
// a Board of tokens and a combination history. RecipeBook defines a catalog and
// is loaded from JSON or YAML files.
//
// Usage:
//
//	catalog := engine.NewDefaultCatalog()
//	water, earth, air, fire := catalog.BaseElements()
//
//	if swamp := catalog.Match(water, earth); swamp != nil {
//		fmt.Println("discovered", swamp.Name())
//	}
//	_ = air
//	_ = fire
//
//	unlocked := catalog.UnlockedElements()
//
// Game Rules:
//
// A session starts with four unlocked base elements: water, earth, air and fire.
// Combining two elements that share a recipe produces the result element and
// unlocks it. Unlocking is one-way. Combining elements without a recipe yields
// nothing and changes no state.
package engine
