package bridge

import (
	"github.com/roach88/scorebridge/internal/render"
	"github.com/roach88/scorebridge/internal/score"
)

// fanout notifies several observers in order.
type fanout []render.Observer

func (f fanout) RunStarted(runID string) {
	for _, o := range f {
		o.RunStarted(runID)
	}
}

func (f fanout) EventApplied(runID string, block, seq int64, ev score.Event) {
	for _, o := range f {
		o.EventApplied(runID, block, seq, ev)
	}
}

func (f fanout) TextApplied(runID string, block, seq int64, text score.Text) {
	for _, o := range f {
		o.TextApplied(runID, block, seq, text)
	}
}

func (f fanout) RunFinished(out render.Outcome) {
	for _, o := range f {
		o.RunFinished(out)
	}
}
