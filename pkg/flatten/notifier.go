package flatten

// Notifier receives change signals after the Sequence mutation is complete.
// Positions are display positions (header offset included). Signals are
// one-shot and fire-and-forget.
type Notifier interface {
	ItemChanged(pos int)
	RangeInserted(start, count int)
	RangeRemoved(start, count int)
	FullRefresh()
}

// NopNotifier discards every signal.
type NopNotifier struct{}

func (NopNotifier) ItemChanged(int)        {}
func (NopNotifier) RangeInserted(int, int) {}
func (NopNotifier) RangeRemoved(int, int)  {}
func (NopNotifier) FullRefresh()           {}
