package audio

import (
	"github.com/sdrxgo/sdrx/internal/agc"
	"github.com/sdrxgo/sdrx/internal/squelch"
)

// Channel holds the per-channel DSP state the period Processor steps
// through every block: AGC, demodulator, squelch analyzer, stereo position,
// and open/closed hysteresis state.
type Channel struct {
	Name     string
	Pos      int
	SqlLevel float32

	AGC      *agc.AGC
	Demod    *Demod
	Squelch  *squelch.Analyzer

	sqlOpen     bool
	sqlOpenPrev bool
}

// NewChannel builds a Channel ready to be driven by Processor.Run.
func NewChannel(name string, mod Modulation, sqlLevelDB float32, pos int, planner squelch.Planner, passbandShape []float32) (*Channel, error) {
	sq, err := squelch.NewAnalyzer(planner, passbandShape, sqlLevelDB)
	if err != nil {
		return nil, err
	}
	return &Channel{
		Name:     name,
		Pos:      pos,
		SqlLevel: sqlLevelDB,
		AGC:      agc.New(),
		Demod:    NewDemod(mod),
		Squelch:  sq,
	}, nil
}

// SquelchOpen reports the channel's current (latched) squelch state.
func (c *Channel) SquelchOpen() bool { return c.sqlOpen }
