package data

import (
	_ "embed"
)

//go:embed seed/categories.json
var SeedCategories []byte
