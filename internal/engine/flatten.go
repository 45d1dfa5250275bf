package engine

import (
	"sort"

	"github.com/trainhub/assignment-api/internal/models"
)

// Flatten normalizes a schedule's session catalog into a flat list with
// location, functional area and classroom context attached, and the group
// and part numbers parsed out of titles exactly once. The input is never
// mutated; missing or partial nesting levels are treated as empty.
//
// Order is deterministic: flat sessions first in storage order, then nested
// sessions by sorted area, location and classroom, preserving each leaf
// slice's order.
func Flatten(catalog models.SessionCatalog) []models.CatalogSession {
	out := make([]models.CatalogSession, 0, len(catalog.Flat))
	for _, s := range catalog.Flat {
		out = append(out, annotate(s, "", "", ""))
	}

	for _, area := range sortedKeys(catalog.Nested) {
		locations := catalog.Nested[area]
		for _, location := range sortedKeys(locations) {
			classrooms := locations[location]
			for _, classroom := range sortedKeys(classrooms) {
				for _, s := range classrooms[classroom] {
					out = append(out, annotate(s, area, location, classroom))
				}
			}
		}
	}
	return out
}

// annotate resolves a session's context and derives its identity. Nesting
// level names win over session fields; the fallback chain covers the rest.
func annotate(s models.Session, area, location, classroom string) models.CatalogSession {
	resolvedLocation, resolvedArea := ResolveLocationArea(s)
	if location != "" {
		resolvedLocation = location
	}
	if area != "" {
		resolvedArea = area
	}
	if classroom == "" {
		classroom = s.Classroom
	}

	group := ParseGroupNumber(s.Title)
	part := ParsePartNumber(s.Title)

	return models.CatalogSession{
		Session:          s,
		TrainingLocation: resolvedLocation,
		FunctionalArea:   resolvedArea,
		Classroom:        classroom,
		GroupNumber:      group,
		PartNumber:       part,
		Key:              SessionKey(s.CourseID, s.Sequence, resolvedLocation, resolvedArea, part),
		LegacyKey:        LegacySessionKey(s.CourseID, s.Sequence),
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
