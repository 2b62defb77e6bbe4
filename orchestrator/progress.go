package orchestrator

// ProgressFunc receives a job's fractional progress (0..1) and a
// human-readable message whenever a stage completes or a poll tick
// reports an update. A nil ProgressFunc is always safe to pass.
type ProgressFunc func(progress float64, message string)

func reportProgress(fn ProgressFunc, progress float64, message string) {
	if fn == nil {
		return
	}
	fn(progress, message)
}
