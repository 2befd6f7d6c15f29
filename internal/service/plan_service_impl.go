package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/dutyroster/internal/csp"
	"github.com/alexanderramin/dutyroster/internal/db"
	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/repository"
	"github.com/alexanderramin/dutyroster/internal/resolver"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

// PlanRequest configures one engine run.
type PlanRequest struct {
	Roster      *domain.Roster
	Constraints domain.ScheduleConstraints

	// SingleSeed runs only Seed instead of the multi-seed beam.
	SingleSeed bool
	Seed       int64
	// SkipCSP hands the greedy schedule straight to the resolver.
	SkipCSP bool
	// RequireFeasible fails fast with an *InfeasibleError when the
	// supply/demand check reports problems.
	RequireFeasible bool
	Save            bool

	OnGenerate scheduler.ProgressFunc
	OnResolve  resolver.ProgressFunc
}

// Prepared is a schedule ready for gap resolution.
type Prepared struct {
	Problems   []scheduler.Problem
	Candidates int
	Lineage    []scheduler.SearchState // greedy, then csp when run
	CSP        *csp.FillResult
	Oracle     *scheduler.Oracle
	Resolver   *resolver.Resolver
}

// PlanResult is everything a full run produced.
type PlanResult struct {
	Prepared
	Fill     resolver.FillReport
	Report   resolver.Report
	Result   scheduler.ScheduleResult
	Run      *domain.Run
	Saved    bool
	Duration time.Duration
}

// Best is the state the final schedule descends from.
func (p *Prepared) Best() scheduler.SearchState {
	return p.Lineage[len(p.Lineage)-1]
}

type planService struct {
	uow      db.UnitOfWork
	metrics  RunMetrics
	observer UseCaseObserver
	now      func() time.Time
}

// NewPlanService wires the engine pipeline. uow may be nil when runs are
// never saved; metrics may be nil.
func NewPlanService(uow db.UnitOfWork, metrics RunMetrics, observers ...UseCaseObserver) PlanService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &planService{
		uow:      uow,
		metrics:  metrics,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *planService) Prepare(ctx context.Context, req PlanRequest) (prep *Prepared, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "prepare",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()
	return s.prepare(ctx, req, fields)
}

func (s *planService) prepare(ctx context.Context, req PlanRequest, fields map[string]any) (*Prepared, error) {
	if req.Roster == nil {
		return nil, errors.New("plan request has no roster")
	}
	c := req.Constraints
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constraints: %w", err)
	}

	prep := &Prepared{Problems: scheduler.CheckFeasibility(req.Roster)}
	fields["problems"] = len(prep.Problems)
	if req.RequireFeasible && len(prep.Problems) > 0 {
		return nil, &InfeasibleError{Problems: prep.Problems}
	}

	gen := scheduler.NewGenerator(req.Roster, c)
	gen.OnProgress = req.OnGenerate
	prep.Oracle = gen.Oracle()

	var candidates []scheduler.SearchState
	if req.SingleSeed {
		sched, err := gen.Generate(ctx, req.Seed)
		if err != nil {
			return nil, fmt.Errorf("generating seed %d: %w", req.Seed, err)
		}
		candidates = []scheduler.SearchState{scheduler.NewSearchState(req.Roster, sched, req.Seed, scheduler.MethodGreedy, "")}
	} else {
		var err error
		if candidates, err = gen.Candidates(ctx); err != nil {
			return nil, fmt.Errorf("generating candidates: %w", err)
		}
	}
	prep.Candidates = len(candidates)
	fields["candidates"] = len(candidates)

	if req.SkipCSP {
		best := candidates[0]
		prep.Lineage = []scheduler.SearchState{best}
		prep.Resolver = resolver.New(prep.Oracle, best.Schedule, c)
		prep.Resolver.OnProgress = req.OnResolve
		return prep, nil
	}

	// Complete every candidate and keep the best completion.
	completed := make([]scheduler.SearchState, 0, len(candidates))
	fills := make(map[string]csp.FillResult, len(candidates))
	parents := make(map[string]scheduler.SearchState, len(candidates))
	for _, cand := range candidates {
		fr := csp.FillGaps(ctx, prep.Oracle, cand.Schedule, c.CSPTimeout())
		s.metrics.ObserveCSP(fr.Stats.Nodes, fr.Stats.Backtracks, fr.Stats.TimedOut)
		child := scheduler.NewSearchState(req.Roster, fr.Schedule, cand.Seed, scheduler.MethodCSP, cand.ID)
		completed = append(completed, child)
		fills[child.ID] = fr
		parents[child.ID] = cand
	}
	scheduler.CanonicalSort(completed)
	best := completed[0]
	fr := fills[best.ID]

	prep.CSP = &fr
	prep.Lineage = []scheduler.SearchState{parents[best.ID], best}
	prep.Resolver = resolver.New(prep.Oracle, best.Schedule, c)
	prep.Resolver.OnProgress = req.OnResolve
	fields["csp_solved"] = fr.Solved
	fields["seed"] = best.Seed
	return prep, nil
}

func (s *planService) Plan(ctx context.Context, req PlanRequest) (res *PlanResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "plan",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if req.Save && s.uow == nil {
		return nil, errors.New("saving runs needs a database")
	}

	prep, err := s.prepare(ctx, req, fields)
	if err != nil {
		return nil, err
	}

	r := prep.Resolver
	fill := r.RunAutoFillWithBacktracking(ctx)
	final := scheduler.NewSearchState(req.Roster, r.Schedule(), prep.Best().Seed, scheduler.MethodSwap, prep.Best().ID)
	prep.Lineage = append(prep.Lineage, final)

	res = &PlanResult{
		Prepared: *prep,
		Fill:     fill,
		Report:   r.Report(),
		Result:   scheduler.BuildResult(prep.Oracle, r.Schedule()),
		Duration: time.Since(startedAt),
	}
	res.Run = s.buildRun(req, res)

	fields["fill_rate"] = res.Run.FillRate
	fields["remaining_gaps"] = len(fill.RemainingGaps)
	fields["stopped_by"] = string(fill.StoppedBy)
	s.metrics.ObserveRun(res.Run, string(fill.StoppedBy))

	if req.Save {
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return repository.NewSQLiteRunRepo(tx).Create(ctx, res.Run)
		})
		if err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
		res.Saved = true
		fields["run_id"] = res.Run.ID
	}
	return res, nil
}

func (s *planService) buildRun(req PlanRequest, res *PlanResult) *domain.Run {
	sched := res.Result.Schedule
	run := &domain.Run{
		ID:             uuid.New().String(),
		Seed:           res.Best().Seed,
		Score:          res.Result.Score.Total,
		FillRate:       res.Result.Stats.FillRate,
		TotalSlots:     sched.TotalSlots(),
		FilledSlots:    sched.FilledSlots(),
		DirectFills:    res.Fill.DirectFills,
		SwapChains:     res.Fill.SwapChainsApplied,
		Backtracks:     res.Fill.Backtracks,
		DurationMillis: res.Duration.Milliseconds(),
		Constraints:    req.Constraints,
		Assignments:    sched.Assignments(),
		CreatedAt:      s.now(),
	}
	for _, g := range res.Fill.RemainingGaps {
		run.RemainingGaps = append(run.RemainingGaps, domain.RunGap{Date: g.Date, Role: g.Role, Reason: string(g.Reason)})
	}
	return run
}

func (s *planService) Feasibility(ctx context.Context, roster *domain.Roster) []scheduler.Problem {
	startedAt := time.Now().UTC()
	problems := scheduler.CheckFeasibility(roster)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "feasibility",
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   true,
		Fields:    map[string]any{"problems": len(problems)},
	})
	return problems
}

func (s *planService) Validate(ctx context.Context, roster *domain.Roster, sched *domain.Schedule, c domain.ScheduleConstraints) scheduler.ScheduleResult {
	startedAt := time.Now().UTC()
	res := scheduler.BuildResult(scheduler.NewOracle(roster, c), sched)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "validate",
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   true,
		Fields:    map[string]any{"violations": len(res.Violations), "unfilled": len(res.Unfilled)},
	})
	return res
}
