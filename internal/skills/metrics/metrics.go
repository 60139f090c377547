package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the skill registry.
type Metrics struct {
	// Catalog definitions appended
	SkillsAdded prometheus.Counter

	// Attribute writes by origin ("mint" or "admin")
	ValuesWritten *prometheus.CounterVec
}

// New creates a new Metrics instance with all skill registry metrics registered.
func New() *Metrics {
	return &Metrics{
		SkillsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_skills_added_total",
			Help: "Skill definitions appended to the catalog",
		}),
		ValuesWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_skills_values_written_total",
			Help: "Skill value writes by origin",
		}, []string{"origin"}), // origin: "mint", "admin"
	}
}

// RecordSkillAdded counts one catalog append.
func (m *Metrics) RecordSkillAdded() {
	if m != nil {
		m.SkillsAdded.Inc()
	}
}

// RecordValueWritten counts one attribute write.
func (m *Metrics) RecordValueWritten(origin string) {
	if m != nil {
		m.ValuesWritten.WithLabelValues(origin).Inc()
	}
}
