package bridge

// Status is a point-in-time view of the bridge for displays that poll it.
// Fields are read independently and are not mutually consistent.
type Status struct {
	Bound         bool    `json:"bound"`
	Running       bool    `json:"running"`
	RunID         string  `json:"run_id,omitempty"`
	Stopping      bool    `json:"stopping"`
	Blocks        int64   `json:"blocks"`
	LastSeq       int64   `json:"last_seq"`
	FinishedCode  int     `json:"finished_code"`
	ScoreTime     float64 `json:"score_time"`
	PendingEvents int     `json:"pending_events"`
	PendingTexts  int     `json:"pending_texts"`
}

// Status returns a snapshot of the bridge. Lock-free.
func (b *Bridge) Status() Status {
	st := Status{
		Bound:         b.handle.Load() != nil,
		Running:       b.running.Load(),
		FinishedCode:  b.FinishedCode(),
		ScoreTime:     b.ScoreTime(),
		PendingEvents: b.events.Len(),
		PendingTexts:  b.texts.Len(),
	}
	if r := b.last.Load(); r != nil {
		st.RunID = r.id
		stats := r.loop.Stats()
		st.Stopping = st.Running && r.loop.StopRequested()
		st.Blocks = stats.Blocks
		st.LastSeq = stats.LastSeq
	}
	return st
}
