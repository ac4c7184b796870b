package progression

import (
	"math"
	"time"

	"github.com/kasuganosora/idlerpg/game/talent"
	"github.com/kasuganosora/idlerpg/resource"
)

// Passive tracks the time-based experience talents. Each accumulator only
// runs while its talent is allocated.
type Passive struct {
	study    time.Duration
	learning time.Duration
}

// PassiveGain is the unscaled experience granted by one Advance.
type PassiveGain struct {
	Study    int
	Learning int
}

// Advance moves both accumulators by dt and returns the experience due.
// Study grants floor(level × study%) per interval; learning grants its
// rank per interval.
func (p *Passive) Advance(dt time.Duration, level int, b talent.Bonuses, rules *resource.Rules) PassiveGain {
	var g PassiveGain
	if b.StudyPct > 0 && rules.StudyIntervalMs > 0 {
		p.study += dt
		period := time.Duration(rules.StudyIntervalMs) * time.Millisecond
		if p.study >= period {
			p.study = 0
			g.Study = int(math.Floor(float64(level) * b.StudyPct / 100))
		}
	} else {
		p.study = 0
	}
	if b.PassiveXP > 0 && rules.PassiveIntervalMs > 0 {
		p.learning += dt
		period := time.Duration(rules.PassiveIntervalMs) * time.Millisecond
		if p.learning >= period {
			p.learning = 0
			g.Learning = int(math.Floor(b.PassiveXP))
		}
	} else {
		p.learning = 0
	}
	return g
}

// Reset clears both accumulators.
func (p *Passive) Reset() {
	p.study = 0
	p.learning = 0
}
