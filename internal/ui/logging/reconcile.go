package logging

// ReconcileMode says how a new log window is applied to the display
type ReconcileMode int

const (
	ReconcileReplace ReconcileMode = iota
	ReconcileAppend
)

func (m ReconcileMode) String() string {
	if m == ReconcileAppend {
		return "append"
	}
	return "replace"
}

// Reconciliation is the update that brings a display showing one log window
// up to date with the next.
type Reconciliation struct {
	Mode  ReconcileMode
	Lines []string
}

// Reconcile compares two successive log windows. When a suffix of oldLines
// equals a prefix of newLines, only the lines past that overlap are appended;
// the largest overlap wins. Without overlap, or when either side is empty,
// the whole new window replaces the display.
func Reconcile(oldLines, newLines []string) Reconciliation {
	if len(oldLines) == 0 || len(newLines) == 0 {
		return Reconciliation{Mode: ReconcileReplace, Lines: newLines}
	}

	maxK := min(len(oldLines), len(newLines))
	for k := maxK; k >= 1; k-- {
		if overlaps(oldLines[len(oldLines)-k:], newLines[:k]) {
			return Reconciliation{Mode: ReconcileAppend, Lines: newLines[k:]}
		}
	}

	return Reconciliation{Mode: ReconcileReplace, Lines: newLines}
}

func overlaps(tail, head []string) bool {
	for i := range tail {
		if tail[i] != head[i] {
			return false
		}
	}
	return true
}
