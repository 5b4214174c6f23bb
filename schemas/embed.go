// Package schemas holds the JSON Schema documents for the service's data artifacts.
package schemas

import "embed"

// Schema file names.
const (
	RecommendationBundle = "recommendation_bundle.schema.json"
	UserProfile          = "user_profile.schema.json"
	PlanCatalog          = "plan_catalog.schema.json"
)

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
