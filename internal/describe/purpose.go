package describe

import (
	"path/filepath"
	"sort"
	"strings"
)

// directoryPurposes maps well-known directory names to a description.
var directoryPurposes = map[string]string{
	"auth":        "Authentication and authorization logic",
	"models":      "Data models and database schemas",
	"views":       "UI views and templates",
	"controllers": "Request handlers and business logic",
	"services":    "Business logic and external service integrations",
	"utils":       "Shared utility functions and helpers",
	"helpers":     "Helper functions and utilities",
	"tests":       "Test files and test utilities",
	"test":        "Test files and test utilities",
	"spec":        "Test specifications",
	"docs":        "Project documentation",
	"api":         "API endpoints and route handlers",
	"components":  "Reusable UI components",
	"lib":         "Library code and shared modules",
	"src":         "Source code root directory",
	"static":      "Static assets (images, CSS, etc.)",
	"public":      "Publicly accessible files",
	"config":      "Configuration files and settings",
	"scripts":     "Build and utility scripts",
	"middleware":  "Middleware functions and handlers",
	"migrations":  "Database migration files",
	"fixtures":    "Test fixtures and sample data",
}

// FilePurpose infers what a file is for from its base name. Returns "" when
// nothing matches.
func FilePurpose(path string) string {
	name := filepath.Base(path)
	name = strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))

	switch name {
	case "index", "main", "app":
		return "Application entry point"
	}
	switch {
	case strings.Contains(name, "test") || strings.Contains(name, "spec"):
		return "Test file"
	case strings.Contains(name, "config") || strings.Contains(name, "settings"):
		return "Configuration"
	case strings.Contains(name, "route"):
		return "Route definitions"
	case strings.Contains(name, "model"):
		return "Data model"
	case strings.Contains(name, "util") || strings.Contains(name, "helper"):
		return "Utility functions"
	case strings.Contains(name, "middleware"):
		return "Middleware"
	}
	return ""
}

// DirPurpose infers a directory's purpose from its name, then from the names
// of the files it directly contains. Returns "" when nothing matches.
func DirPurpose(dir string, filesWithin []string) string {
	name := strings.ToLower(filepath.Base(dir))

	if purpose, ok := directoryPurposes[name]; ok {
		return purpose
	}

	// Substring matches, checked in sorted key order so the result does not
	// depend on map iteration.
	keys := make([]string, 0, len(directoryPurposes))
	for k := range directoryPurposes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(name, k) {
			return directoryPurposes[k]
		}
	}

	anyContains := func(sub string) bool {
		for _, f := range filesWithin {
			if strings.Contains(strings.ToLower(f), sub) {
				return true
			}
		}
		return false
	}
	switch {
	case anyContains("test") || anyContains("spec"):
		return "Test files and test utilities"
	case anyContains("model"):
		return "Data models and schemas"
	case anyContains("route") || anyContains("endpoint"):
		return "API routes and endpoints"
	case anyContains("component"):
		return "UI components"
	}
	return ""
}
