package learning

import (
	"math"
	"time"
)

const statusCompleted = "completed"

type (
	ModuleProgress struct {
		CompletedLessons int        `json:"completed_lessons"`
		TotalLessons     int        `json:"total_lessons"`
		Completed        bool       `json:"completed"`
		CompletedDate    *time.Time `json:"completed_date,omitempty"`
		Percent          int        `json:"percent"`
	}

	// Progress tracks, per module, the highest lesson a volunteer completed.
	// Lessons are completed in order, so lesson n completed implies every lesson before it.
	Progress struct {
		Modules map[string]ModuleProgress `json:"modules"`
		Percent int                       `json:"percent"` // completed modules over all modules
	}

	// LessonRecord is the stored completion of one lesson by one volunteer.
	LessonRecord struct {
		VolunteerID        string    `json:"volunteer_id"`
		ModuleName         string    `json:"module_name"`
		LessonName         string    `json:"lesson_name"`
		CompletionStatus   string    `json:"completion_status"`
		ProgressPercentage int       `json:"progress_percentage"`
		LastAccessed       time.Time `json:"last_accessed"`
	}
)

func NewProgress() *Progress {
	p := &Progress{Modules: make(map[string]ModuleProgress, len(catalog))}
	for _, m := range catalog {
		p.Modules[m.Name] = ModuleProgress{TotalLessons: m.LessonCount()}
	}
	return p
}

// ProgressFromRecords rebuilds the progress of a volunteer from their stored records.
// Records of unknown modules or lessons are ignored.
func ProgressFromRecords(records []LessonRecord) *Progress {
	p := NewProgress()
	for _, rec := range records {
		if rec.CompletionStatus != statusCompleted {
			continue
		}
		m, err := FindModule(rec.ModuleName)
		if err != nil {
			continue
		}
		if n := m.LessonNumber(rec.LessonName); n > 0 {
			p.complete(m, n, rec.LastAccessed)
		}
	}
	p.refreshPercents()
	return p
}

// CompleteLesson marks lesson `n` of module `m` as completed. It reports whether the progress moved:
// completing a lesson at or below the highest completed one changes nothing.
func (p *Progress) CompleteLesson(m Module, n int, now time.Time) bool {
	if n < 1 || n > m.LessonCount() {
		return false
	}
	changed := p.complete(m, n, now)
	p.refreshPercents()
	return changed
}

func (p *Progress) complete(m Module, n int, now time.Time) bool {
	mp := p.Modules[m.Name]
	mp.TotalLessons = m.LessonCount()
	if n <= mp.CompletedLessons {
		return false
	}
	mp.CompletedLessons = n
	if n >= mp.TotalLessons && !mp.Completed {
		mp.Completed = true
		date := now.UTC()
		mp.CompletedDate = &date
	}
	p.Modules[m.Name] = mp
	return true
}

func (p *Progress) IsLessonCompleted(module string, n int) bool {
	return n >= 1 && p.Modules[module].CompletedLessons >= n
}

// ModulePercent is the share of completed lessons of `module`, rounded.
func (p *Progress) ModulePercent(module string) int {
	mp := p.Modules[module]
	if mp.TotalLessons == 0 {
		return 0
	}
	return int(math.Round(float64(mp.CompletedLessons) / float64(mp.TotalLessons) * 100))
}

// OverallPercent is the share of completed modules, rounded.
func (p *Progress) OverallPercent() int {
	var done int
	for _, m := range catalog {
		if p.Modules[m.Name].Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(catalog)) * 100))
}

// CompletedModules counts the modules whose every lesson is completed.
func (p *Progress) CompletedModules() int {
	var done int
	for _, mp := range p.Modules {
		if mp.Completed {
			done++
		}
	}
	return done
}

func (p *Progress) refreshPercents() {
	for name, mp := range p.Modules {
		mp.Percent = p.ModulePercent(name)
		p.Modules[name] = mp
	}
	p.Percent = p.OverallPercent()
}
