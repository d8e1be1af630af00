package overlay

import (
	"context"

	"go.uber.org/zap"

	"github.com/pagesnap/pagesnap/internal/catalog"
)

// Pipeline ties the discovery phases and the action engine together for one
// page. It is stateless and safe to share across workers; the Surface it is
// handed is not.
type Pipeline struct {
	static  *StaticAnalyzer
	dynamic *DynamicScanner
	engine  *Engine
	logger  *zap.Logger
}

// NewPipeline assembles the full overlay pipeline over one shared catalog.
func NewPipeline(cat catalog.Catalog, stackRankThreshold int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		static:  NewStaticAnalyzer(cat),
		dynamic: NewDynamicScanner(cat, stackRankThreshold),
		engine:  NewEngine(cat, logger),
		logger:  logger,
	}
}

// Result reports discovery counts alongside the engine's handling report.
type Result struct {
	StaticCount  int
	DynamicCount int
	TotalCount   int
	HighCount    int
	OtherCount   int
	Report
}

// Run executes discovery and handling against a page. initialHTML is the DOM
// captured right after load, before the stabilization wait; the surface is
// queried after stabilization for the dynamic scan and all actions.
func (p *Pipeline) Run(ctx context.Context, surface Surface, initialHTML string) (Result, error) {
	var res Result

	static, err := p.static.Analyze(initialHTML)
	if err != nil {
		return res, err
	}
	dynamic, err := p.dynamic.Scan(ctx, surface)
	if err != nil {
		return res, err
	}

	list := Prioritize(static, dynamic)
	res.StaticCount = len(static)
	res.DynamicCount = len(dynamic)
	res.TotalCount = len(list.Candidates)
	res.HighCount = list.HighCount
	res.OtherCount = len(list.Candidates) - list.HighCount

	p.logger.Debug("discovery complete",
		zap.Int("static", res.StaticCount),
		zap.Int("dynamic", res.DynamicCount),
		zap.Int("high_priority", res.HighCount),
		zap.Int("other", res.OtherCount),
	)

	report, err := p.engine.Run(ctx, surface, list)
	if err != nil {
		return res, err
	}
	res.Report = report
	return res, nil
}
