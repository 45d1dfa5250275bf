package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/trainhub/assignment-api/internal/models"
)

// Defaults applied when a session carries no usable location context.
const (
	DefaultLocation       = "Unknown Location"
	DefaultFunctionalArea = "General"
)

var (
	groupPattern = regexp.MustCompile(`(?i)\bgroup\s*(\d+)`)
	partPattern  = regexp.MustCompile(`(?i)\bpart\s*(\d+)`)
	alnumPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeToken lower-cases a value and hyphenates internal whitespace.
func NormalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), "-")
}

// SessionKey derives the stable identifier for a session. Pure and total:
// identical attributes always produce the identical string. Start and end
// times deliberately play no part, so editing a session's clock time never
// changes its identity.
func SessionKey(courseID string, sequence int, location, area string, part int) string {
	key := fmt.Sprintf("%s-%d-%s-%s", NormalizeToken(courseID), sequence, NormalizeToken(location), NormalizeToken(area))
	if part > 0 {
		key += fmt.Sprintf("-part%d", part)
	}
	return key
}

// LegacySessionKey reproduces the identifier format used before keys
// carried location context. Kept for backward compatibility with stored
// target references.
func LegacySessionKey(courseID string, sequence int) string {
	return fmt.Sprintf("%s-%d", NormalizeToken(courseID), sequence)
}

// GroupKey identifies a numbered cohort at a location, used for group-level
// assignments.
func GroupKey(location, area string, groupNumber int) string {
	return fmt.Sprintf("%s-%s-Group%d", location, area, groupNumber)
}

// CourseGroupKey identifies a cohort within one course, used for
// course-level assignments.
func CourseGroupKey(courseID string, groupNumber int) string {
	return fmt.Sprintf("%s-group-%d", courseID, groupNumber)
}

// ParseGroupNumber extracts "Group N" from a session title. Defaults to 1.
func ParseGroupNumber(title string) int {
	if m := groupPattern.FindStringSubmatch(title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// ParsePartNumber extracts "Part N" from a session title. Zero means the
// session has no part suffix.
func ParsePartNumber(title string) int {
	if m := partPattern.FindStringSubmatch(title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// ResolveLocationArea applies the location fallback chain in priority
// order: direct session fields, then the legacy compound "Location|Area"
// key (also seen as "Location - Area"), then the defaults.
func ResolveLocationArea(s models.Session) (string, string) {
	location := strings.TrimSpace(s.Location)
	area := strings.TrimSpace(s.FunctionalArea)

	if (location == "" || area == "") && strings.TrimSpace(s.LocationKey) != "" {
		compoundLoc, compoundArea := splitLocationKey(s.LocationKey)
		if location == "" {
			location = compoundLoc
		}
		if area == "" {
			area = compoundArea
		}
	}

	if location == "" {
		location = DefaultLocation
	}
	if area == "" {
		area = DefaultFunctionalArea
	}
	return location, area
}

func splitLocationKey(key string) (string, string) {
	key = strings.TrimSpace(key)
	sep := "|"
	if !strings.Contains(key, sep) {
		sep = "-"
	}
	parts := strings.SplitN(key, sep, 2)
	location := strings.TrimSpace(parts[0])
	area := ""
	if len(parts) > 1 {
		area = strings.TrimSpace(parts[1])
	}
	return location, area
}

// collapseToken reduces a value to lower-case alphanumerics, so
// "NorthTrainingCentre" and "North Training Centre" compare equal when
// matching a location-name suffix on a target reference.
func collapseToken(s string) string {
	return alnumPattern.ReplaceAllString(strings.ToLower(s), "")
}
