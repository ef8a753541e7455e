package metrics

// Recorder defines the metrics hooks for the inspector. The default
// implementation is a no-op so one-shot runs carry no backend.
type Recorder interface {
	ConnOpened(pool string)
	ConnClosed(pool string)
	InspectionStarted(pool string)
	InspectionSucceeded(pool string)
	InspectionFailed(pool, kind string)
	JobReceived(pool string, height int64)
}

// NoopRecorder implements Recorder without emitting metrics.
type NoopRecorder struct{}

func (NoopRecorder) ConnOpened(string)               {}
func (NoopRecorder) ConnClosed(string)               {}
func (NoopRecorder) InspectionStarted(string)        {}
func (NoopRecorder) InspectionSucceeded(string)      {}
func (NoopRecorder) InspectionFailed(string, string) {}
func (NoopRecorder) JobReceived(string, int64)       {}

// Default is the process-wide metrics sink; watch mode swaps in the
// Prometheus recorder.
var Default Recorder = NoopRecorder{}
