// Package learning serves the volunteer learning hub: the module catalog,
// lesson and flashcard content, volunteer sessions and lesson progress.
package learning

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// Lesson is one lesson of a Module. Number is 1-based within the module.
type Lesson struct {
	Number int    `json:"number"`
	Key    string `json:"key"` // "<module position>.<number>", e.g. "2.3"
	Slug   string `json:"slug"`
	Title  string `json:"title"`
}

type Module struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Title    string   `json:"title"`
	Icon     string   `json:"icon"`
	Lessons  []Lesson `json:"lessons"`
}

var catalog = []Module{
	newModule("nutrition", 1, "Community Nutrition Education & Health Promotion", "fas fa-seedling",
		"nutrition-basics", "Understanding Global Nutrition Challenges",
		"nutrition-cultural", "Nutrition Fundamentals & Six Essential Nutrients",
		"nutrition-food-groups", "Food Groups & Macronutrients",
		"nutrition-macronutrients", "Micronutrients & Food Labels",
	),
	newModule("food-waste", 2, "Food Waste Reduction & Sustainable Food Systems", "fas fa-recycle",
		"food-waste-basics", "Global Food Waste Crisis & Environmental Impact",
		"food-waste-global", "Food Recovery & Redistribution Systems",
		"food-waste-prevention", "Household Food Waste Prevention Strategies",
		"food-waste-community", "Community Awareness Campaigns & Policy Advocacy",
	),
	newModule("volunteer", 3, "Volunteer Development & Leadership Training", "fas fa-hands-helping",
		"volunteer-basics", "Strategic Volunteer Program Development",
		"volunteer-communication", "Train-the-Trainer Model Implementation",
		"volunteer-project-management", "Volunteer Engagement & Retention Strategies",
		"volunteer-food-safety", "Leadership Development & Succession Planning",
		"volunteer-sustainability", "Food Safety Training",
		"volunteer-leadership", "Sustainability & Growth",
		"volunteer-capstone", "Volunteer Capstone Project",
	),
	newModule("module4", 4, "Program Integration & Community Impact Measurement", "fas fa-puzzle-piece",
		"module4-lesson1", "Integrated Program Design & Implementation",
		"module4-lesson2", "Community Partnerships & Stakeholder Engagement",
		"module4-lesson3", "Monitoring, Evaluation & Impact Measurement",
	),
}

// newModule builds a Module from (slug, title) pairs, in lesson order.
func newModule(name string, pos int, title, icon string, slugTitles ...string) Module {
	m := Module{Name: name, Position: pos, Title: title, Icon: icon}
	for i := 0; i+1 < len(slugTitles); i += 2 {
		n := len(m.Lessons) + 1
		m.Lessons = append(m.Lessons, Lesson{
			Number: n,
			Key:    fmt.Sprintf("%d.%d", pos, n),
			Slug:   slugTitles[i],
			Title:  slugTitles[i+1],
		})
	}
	return m
}

// Modules returns the catalog, in display order.
func Modules() []Module {
	return catalog
}

func FindModule(name string) (Module, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range catalog {
		if m.Name == name {
			return m, nil
		}
	}
	return Module{}, ErrModuleNotFound
}

func (m Module) LessonCount() int { return len(m.Lessons) }

func (m Module) FirstLesson() Lesson { return m.Lessons[0] }

// Lesson finds a lesson by number ("3"), key ("1.3") or slug ("nutrition-food-groups").
func (m Module) Lesson(ref string) (Lesson, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(m.Lessons) {
			return m.Lessons[n-1], nil
		}
		return Lesson{}, ErrLessonNotFound
	}
	for _, l := range m.Lessons {
		if l.Key == ref || l.Slug == ref {
			return l, nil
		}
	}
	return Lesson{}, ErrLessonNotFound
}

// LessonNumber returns the number of the lesson with `slug`, or 0 if it is not part of the module.
func (m Module) LessonNumber(slug string) int {
	for _, l := range m.Lessons {
		if l.Slug == slug {
			return l.Number
		}
	}
	return 0
}

// Neighbours returns the lessons before and after `l`, if any.
func (m Module) Neighbours(l Lesson) (prev, next *Lesson) {
	if l.Number > 1 {
		p := m.Lessons[l.Number-2]
		prev = &p
	}
	if l.Number < len(m.Lessons) {
		n := m.Lessons[l.Number]
		next = &n
	}
	return prev, next
}
