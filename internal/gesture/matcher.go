// Package gesture recognizes static hand poses used as quiz controls.
package gesture

import (
	"math"
	"sort"

	"github.com/ayusman/fingerquiz/internal/detector"
)

// DefaultTolerance is the summed landmark distance under which a pose matches.
const DefaultTolerance = 3.0

// Template is a reference pose in normalized hand coordinates.
type Template struct {
	Name      string
	Landmarks []detector.Point3D
	Tolerance float64
}

// NewTemplate builds a template from raw landmarks.
func NewTemplate(name string, hand detector.HandLandmarks, tolerance float64) *Template {
	normalized := hand.Normalize()
	return &Template{
		Name:      name,
		Landmarks: normalized.Points[:],
		Tolerance: tolerance,
	}
}

// OpenPalm returns the template for an open hand with all fingers extended.
func OpenPalm() *Template {
	return NewTemplate("open-palm", detector.OpenPalmLandmarks(), DefaultTolerance)
}

// Match is a template that matched an input pose.
type Match struct {
	Template *Template
	Score    float64 // 0-1, higher is better
	Distance float64
}

// StaticMatcher matches single-frame hand poses against registered templates.
type StaticMatcher struct {
	templates []*Template
}

func NewStaticMatcher(templates ...*Template) *StaticMatcher {
	m := &StaticMatcher{}
	for _, t := range templates {
		m.AddTemplate(t)
	}
	return m
}

func (m *StaticMatcher) AddTemplate(t *Template) {
	if t == nil {
		return
	}
	m.templates = append(m.templates, t)
}

// Match returns the templates within tolerance of hand, best first.
func (m *StaticMatcher) Match(hand *detector.HandLandmarks) []Match {
	if hand == nil {
		return nil
	}

	normalized := hand.Normalize()
	input := normalized.Points[:]

	var matches []Match
	for _, template := range m.templates {
		distance := euclideanDistance(input, template.Landmarks)
		if distance > template.Tolerance {
			continue
		}
		matches = append(matches, Match{
			Template: template,
			Score:    1.0 / (1.0 + distance),
			Distance: distance,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// euclideanDistance sums the distances between corresponding points.
func euclideanDistance(a, b []detector.Point3D) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	return total
}
