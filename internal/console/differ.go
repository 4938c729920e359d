package console

// Differ isolates genuinely new tail content between successive reads of
// the console buffer by comparing lengths. It is not safe for concurrent
// use; the polling loop is its only caller.
type Differ struct {
	lastLen int
}

func NewDiffer() *Differ {
	return &Differ{}
}

// Delta returns the tail of buffer not seen by a previous call, and whether
// anything new was observed. An unchanged length means no new content. A
// shorter buffer means the panel reset the console externally; the differ
// rebases silently from the new baseline and reports nothing new for that
// read, which can drop an in-flight event. That loss is accepted: the next
// roster refresh reconciles state.
func (d *Differ) Delta(buffer string, length int) (string, bool) {
	switch {
	case length == d.lastLen:
		return "", false
	case length < d.lastLen:
		d.lastLen = length
		return "", false
	default:
		delta := buffer[d.lastLen:length]
		d.lastLen = length
		return delta, true
	}
}
