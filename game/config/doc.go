// Package config provides recipe book management for the alchemy game.
//
// The config package handles:
//   - Loading recipe books from JSON and YAML files
//   - Validation through the engine's recipe book rules
//   - Default book selection
//   - Book discovery, listing and saving
//
// Recipe Book Format:
//
// A recipe book is a file in the recipes directory (.yaml, .yml or .json).
// Its file name without extension is the config ID used to create sessions.
// Each book defines:
//   - The elements with their image keys, exactly four marked as base
//   - Unordered recipes "first + second = result"
//   - Optional board geometry and game messages
//
// A minimal YAML book:
//
//	name: Classic
//	elements:
//	  - {name: Water, image: water, base: true}
//	  - {name: Earth, image: earth, base: true}
//	  - {name: Air, image: air, base: true}
//	  - {name: Fire, image: fire, base: true}
//	  - {name: Swamp, image: swamp}
//	recipes:
//	  - {first: Water, second: Earth, result: Swamp}
//
// Usage:
//
//	manager, err := config.NewManager("recipes")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	book, err := manager.LoadConfig("classic")
//	defaultBook := manager.GetDefault()
//	books, err := manager.ListConfigs()
//
// Defaults:
//
// The default book is classic when present, otherwise the first valid book in
// the directory, otherwise the built-in ten-element starter book.
package config
