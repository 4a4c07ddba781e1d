// Package skills centralizes skill-tag normalization and matching so the
// selector and the expertise tracker cannot drift apart.
package skills

import "strings"

// Normalize lower-cases and trims a skill tag. Every comparison and every
// skillExpertise map key goes through this.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Match reports whether two tags refer to the same skill: after
// normalization, one must contain the other. "react" matches "reactjs" and
// "React Native" but not "vue".
func Match(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// AnyMatch reports whether any of tags matches any of required.
func AnyMatch(tags, required []string) bool {
	for _, t := range tags {
		for _, r := range required {
			if Match(t, r) {
				return true
			}
		}
	}
	return false
}

// Covers reports whether every required tag is matched by some tag in tags.
// An empty required set is covered.
func Covers(tags, required []string) bool {
	for _, r := range required {
		found := false
		for _, t := range tags {
			if Match(t, r) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// AppendMissing returns tags with any member of add absent from it appended.
// Comparison is exact after normalization, so repeated calls are idempotent.
func AppendMissing(tags, add []string) []string {
	out := tags
	for _, a := range add {
		na := Normalize(a)
		if na == "" {
			continue
		}
		exists := false
		for _, t := range out {
			if Normalize(t) == na {
				exists = true
				break
			}
		}
		if !exists {
			out = append(out, a)
		}
	}
	return out
}

// Role pattern buckets used by DetectRole. A bucket wins with two or more
// matching skills; full-stack requires two in each of frontend and backend.
var rolePatterns = []struct {
	role     string
	patterns []string
}{
	{"AI/ML Engineer", []string{"machine learning", "ai", "tensorflow", "pytorch", "nlp", "deep learning", "data science"}},
	{"Mobile Developer", []string{"react native", "flutter", "ios", "android", "swift", "kotlin"}},
	{"DevOps Engineer", []string{"docker", "kubernetes", "aws", "azure", "ci/cd", "jenkins", "terraform", "linux"}},
	{"QA Engineer", []string{"testing", "selenium", "jest", "cypress", "qa", "test automation"}},
}

var frontendPatterns = []string{"react", "vue", "angular", "html", "css", "ui", "ux", "javascript", "typescript"}

var backendPatterns = []string{"node", "express", "python", "django", "java", "spring", "api", "database", "mongodb", "sql"}

const roleThreshold = 2

// DefaultRole is used when no pattern bucket reaches the threshold.
const DefaultRole = "Software Developer"

func countMatches(tags, patterns []string) int {
	n := 0
	for _, t := range tags {
		nt := Normalize(t)
		for _, p := range patterns {
			if strings.Contains(nt, p) {
				n++
				break
			}
		}
	}
	return n
}

// DetectRole derives a role label from a worker's skill tags.
func DetectRole(tags []string) string {
	for _, bucket := range rolePatterns {
		if countMatches(tags, bucket.patterns) >= roleThreshold {
			return bucket.role
		}
	}

	frontend := countMatches(tags, frontendPatterns)
	backend := countMatches(tags, backendPatterns)
	switch {
	case frontend >= roleThreshold && backend >= roleThreshold:
		return "Full-Stack Developer"
	case frontend >= roleThreshold:
		return "Frontend Developer"
	case backend >= roleThreshold:
		return "Backend Developer"
	}
	return DefaultRole
}
