package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	for _, r := range c.reporters {
		r.Hardware(summary)
	}
}

func (c *CompositeReporter) Source(summary SourceSummary) {
	for _, r := range c.reporters {
		r.Source(summary)
	}
}

func (c *CompositeReporter) StageProgress(update StageProgress) {
	for _, r := range c.reporters {
		r.StageProgress(update)
	}
}

func (c *CompositeReporter) SceneDetection(summary SceneSummary) {
	for _, r := range c.reporters {
		r.SceneDetection(summary)
	}
}

func (c *CompositeReporter) PlanReady(summary PlanSummary) {
	for _, r := range c.reporters {
		r.PlanReady(summary)
	}
}

func (c *CompositeReporter) PoolProgress(progress PoolProgress) {
	for _, r := range c.reporters {
		r.PoolProgress(progress)
	}
}

func (c *CompositeReporter) ProbeComplete(outcome ProbeOutcome) {
	for _, r := range c.reporters {
		r.ProbeComplete(outcome)
	}
}

func (c *CompositeReporter) ChunkComplete(outcome ChunkOutcome) {
	for _, r := range c.reporters {
		r.ChunkComplete(outcome)
	}
}

func (c *CompositeReporter) ConcatComplete(summary ConcatSummary) {
	for _, r := range c.reporters {
		r.ConcatComplete(summary)
	}
}

func (c *CompositeReporter) ValidationComplete(summary ValidationSummary) {
	for _, r := range c.reporters {
		r.ValidationComplete(summary)
	}
}

func (c *CompositeReporter) RunComplete(summary RunOutcome) {
	for _, r := range c.reporters {
		r.RunComplete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) OperationComplete(message string) {
	for _, r := range c.reporters {
		r.OperationComplete(message)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
