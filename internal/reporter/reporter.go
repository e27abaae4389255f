package reporter

// Reporter defines the interface for progress reporting across a run: one
// source video, split into scenes, encoded chunk-by-chunk by the worker
// pool, then concatenated.
type Reporter interface {
	Hardware(summary HardwareSummary)
	Source(summary SourceSummary)
	StageProgress(update StageProgress)
	SceneDetection(summary SceneSummary)
	PlanReady(summary PlanSummary)
	PoolProgress(progress PoolProgress)
	ProbeComplete(outcome ProbeOutcome)
	ChunkComplete(outcome ChunkOutcome)
	ConcatComplete(summary ConcatSummary)
	ValidationComplete(summary ValidationSummary)
	RunComplete(summary RunOutcome)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)         {}
func (NullReporter) Source(SourceSummary)             {}
func (NullReporter) StageProgress(StageProgress)      {}
func (NullReporter) SceneDetection(SceneSummary)      {}
func (NullReporter) PlanReady(PlanSummary)            {}
func (NullReporter) PoolProgress(PoolProgress)        {}
func (NullReporter) ProbeComplete(ProbeOutcome)       {}
func (NullReporter) ChunkComplete(ChunkOutcome)       {}
func (NullReporter) ConcatComplete(ConcatSummary)     {}
func (NullReporter) ValidationComplete(ValidationSummary) {}
func (NullReporter) RunComplete(RunOutcome)           {}
func (NullReporter) Warning(string)                   {}
func (NullReporter) Error(ReporterError)               {}
func (NullReporter) OperationComplete(string)         {}
func (NullReporter) Verbose(string)                   {}
