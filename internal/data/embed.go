// Package data holds the city documents compiled into every binary.
package data

import "embed"

// Locations contains locations/<city-key>.json.
//
//go:embed locations/*.json
var Locations embed.FS

// Dir is the directory inside Locations that holds the documents.
const Dir = "locations"
