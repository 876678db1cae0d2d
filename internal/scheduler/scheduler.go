package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/tariff-mirror/internal/config"
	"github.com/rohmanhakim/tariff-mirror/internal/discovery"
	"github.com/rohmanhakim/tariff-mirror/internal/fetcher"
	"github.com/rohmanhakim/tariff-mirror/internal/freshness"
	"github.com/rohmanhakim/tariff-mirror/internal/frontier"
	"github.com/rohmanhakim/tariff-mirror/internal/metadata"
	"github.com/rohmanhakim/tariff-mirror/internal/naming"
	"github.com/rohmanhakim/tariff-mirror/internal/session"
	"github.com/rohmanhakim/tariff-mirror/internal/storage"
	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
	"github.com/rohmanhakim/tariff-mirror/pkg/fileutil"
	"github.com/rohmanhakim/tariff-mirror/pkg/hashutil"
	"github.com/rohmanhakim/tariff-mirror/pkg/limiter"
	"github.com/rohmanhakim/tariff-mirror/pkg/retry"
	"github.com/rohmanhakim/tariff-mirror/pkg/timeutil"
)

/*
 Scheduler is the sole control-plane authority of the run.

 Determinism and admission guarantees:
 - Scheduler is the ONLY component allowed to decide whether a document
   enters the fetch sequence.
 - All admission (mandatory set, discovery supplement, grid walk, resume
   cursor) is completed through the frontier before fetching begins.
 - Pipeline stages may detect and classify failure, but must never
   decide retry, continuation, or abortion.
 - Metadata emission is observational only and MUST NOT influence
   scheduling, retries, or run termination.

 Scheduler Responsibilities:
 - Coordinate the run lifecycle
   (Idle -> WarmingUp -> EnumeratingMandatory -> EnumeratingGrid ->
    Finalizing -> Completed | Aborted)
 - Enforce politeness pacing between every network-issuing step
 - Reconstruct the resume cursor from existing output filenames
 - Aggregate the run report
 - The sole authority on: continue, abort

 Concurrency model: strictly sequential, one in-flight request at a
 time. This is deliberate backpressure against the single origin, not a
 performance ceiling. Do not parallelize the fetch loop.

 Operator invariant (documented, not enforced): two processes must not
 run against the same output directory and edition; there is no file
 locking.
*/

type Scheduler struct {
	cfg          config.Config
	metadataSink metadata.MetadataSink
	runFinalizer metadata.RunFinalizer
	runId        string
	session      *session.Session
	httpFetcher  fetcher.HttpFetcher
	detector     freshness.Detector
	frontier     *frontier.Frontier
	pacer        limiter.Pacer
	engine       discovery.Engine
	// strategy actually used for fetching; selected after warm-up so
	// the DOM-assisted variant can see the discovery index
	fetchStrategy fetcher.Fetcher
	referer       string
	report        RunReport
}

func NewScheduler(cfg config.Config) (Scheduler, error) {
	runId := uuid.NewString()
	recorder := metadata.NewRecorder(runId)
	return newScheduler(cfg, runId, &recorder, &recorder)
}

// NewSchedulerWithDeps creates a Scheduler with injected metadata
// dependencies for testing, so tests can observe recorded events
// without relying on real infrastructure.
func NewSchedulerWithDeps(
	cfg config.Config,
	runFinalizer metadata.RunFinalizer,
	metadataSink metadata.MetadataSink,
) (Scheduler, error) {
	return newScheduler(cfg, uuid.NewString(), runFinalizer, metadataSink)
}

func newScheduler(
	cfg config.Config,
	runId string,
	runFinalizer metadata.RunFinalizer,
	metadataSink metadata.MetadataSink,
) (Scheduler, error) {
	sess, err := session.NewSession(metadataSink, cfg.Timeout(), cfg.RandomSeed(), cfg.UserAgent())
	if err != nil {
		return Scheduler{}, err
	}

	sink := storage.NewLocalSink(metadataSink)
	httpFetcher := fetcher.NewHttpFetcher(metadataSink, &sess, &sink, hashutil.HashAlgoBLAKE3)
	detector := freshness.NewDetector(metadataSink, &sess)
	front := frontier.NewFrontier()
	engine := discovery.NewEngine(metadataSink)

	pacer := limiter.NewOriginPacer()
	pacer.SetBaseDelay(cfg.BaseDelay())
	pacer.SetJitter(cfg.DelayVariation())
	if cfg.RandomSeed() != 0 {
		pacer.SetRandomSeed(cfg.RandomSeed())
	}

	return Scheduler{
		cfg:          cfg,
		metadataSink: metadataSink,
		runFinalizer: runFinalizer,
		runId:        runId,
		session:      &sess,
		httpFetcher:  httpFetcher,
		detector:     detector,
		frontier:     &front,
		pacer:        pacer,
		engine:       engine,
	}, nil
}

func (s *Scheduler) retryParam() retry.RetryParam {
	return retry.NewRetryParam(
		s.cfg.DelayVariation(),
		s.cfg.RandomSeed(),
		s.cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			s.cfg.BackoffBaseDuration(),
			s.cfg.BackoffMaxDuration(),
		),
	)
}

func (s *Scheduler) originHost() string {
	base := s.cfg.BaseURL()
	return base.Host
}

func (s *Scheduler) editionDir() string {
	return filepath.Join(s.cfg.OutputDir(), strconv.Itoa(int(s.cfg.Edition())))
}

// ExecuteRun drives one complete batch run. The returned report is
// valid in every case, including aborts; err is non-nil exactly when
// the run terminated in the Aborted state.
func (s *Scheduler) ExecuteRun(ctx context.Context) (report RunReport, err error) {
	runStart := time.Now()
	s.report = RunReport{runId: s.runId, finalState: StateIdle}

	// Every exit path funnels through one finalization step: the run
	// enters Finalizing, the stats are recorded exactly once, and only
	// then does the state settle into Completed or Aborted. The named
	// return carries the finished report out, duration included.
	defer func() {
		s.report.finalState = StateFinalizing
		s.report.duration = time.Since(runStart)
		s.runFinalizer.RecordFinalRunStats(
			s.report.downloaded,
			s.report.skipped,
			s.report.failed,
			s.report.duration,
		)
		if err != nil {
			s.report.finalState = StateAborted
		} else {
			s.report.finalState = StateCompleted
		}
		report = s.report
	}()

	// Warm-up visit: harvest cookies, establish the referer, and (in
	// headless mode) capture the landing page for discovery. Failure is
	// non-fatal; the run proceeds with a best-effort referer.
	s.report.finalState = StateWarmingUp
	landingURL := naming.LandingURL(s.cfg.BaseURL(), s.cfg.Edition())
	var pageBody []byte
	if s.cfg.DryRun() {
		s.referer = landingURL.String()
	} else {
		referer, body, warmErr := s.session.WarmUp(ctx, landingURL)
		s.pacer.MarkLastRequestAsNow(s.originHost())
		if warmErr != nil {
			s.referer = landingURL.String()
		} else {
			s.referer = referer
			pageBody = body
		}
	}

	s.selectFetchStrategy(pageBody)

	if err = s.admitAll(); err != nil {
		return s.report, err
	}

	err = s.processAdmitted(ctx)
	return s.report, err
}

// selectFetchStrategy picks the fetch variant for this run. The DOM
// strategy consults the links the landing page actually advertises;
// the direct strategy trusts the templated URL scheme.
func (s *Scheduler) selectFetchStrategy(pageBody []byte) {
	if !s.cfg.Headless() {
		s.fetchStrategy = &s.httpFetcher
		return
	}

	index := discovery.NewIndex()
	if len(pageBody) > 0 {
		landing := naming.LandingURL(s.cfg.BaseURL(), s.cfg.Edition())
		extracted, err := s.engine.ExtractLinks(landing, pageBody)
		if err == nil {
			index = extracted
		}
		// discovery failure already recorded; fall through with an
		// empty index so the templated URLs still work
	}
	domFetcher := fetcher.NewDomFetcher(&s.httpFetcher, index)
	s.fetchStrategy = &domFetcher
}

// admitAll pushes the full item space through the frontier: the fixed
// mandatory set, then any coordinate documents the landing page
// advertises, then the combinatorial chapter x heading grid in
// ascending order. The frontier deduplicates by filename.
func (s *Scheduler) admitAll() error {
	edition := s.cfg.Edition()

	for _, template := range s.cfg.NamedTemplates() {
		doc := naming.NewNamedDocument(template)
		s.frontier.Submit(frontier.NewAdmissionCandidate(
			doc,
			naming.ResolveFilename(edition, doc),
			frontier.SourceMandatory,
		))
	}

	if s.cfg.Headless() {
		s.admitDiscovered()
	}

	cursorChapter, cursorHeading := 0, 0
	if s.cfg.Resume() {
		cursorChapter, cursorHeading = s.resumeCursor()
	}

	for chapter := s.cfg.ChapterFrom(); chapter <= s.cfg.ChapterTo(); chapter++ {
		for heading := naming.HeadingMin; heading <= naming.HeadingMax; heading++ {
			if chapter < cursorChapter || (chapter == cursorChapter && heading <= cursorHeading) {
				continue
			}
			doc := naming.NewCoordinateDocument(chapter, naming.HeadingLabel(heading))
			s.frontier.Submit(frontier.NewAdmissionCandidate(
				doc,
				naming.ResolveFilename(edition, doc),
				frontier.SourceGrid,
			))
		}
	}

	return nil
}

// admitDiscovered feeds coordinate documents the landing page links to
// into the queue ahead of the grid walk.
func (s *Scheduler) admitDiscovered() {
	if s.fetchStrategy == nil {
		return
	}
	domFetcher, ok := s.fetchStrategy.(*fetcher.DomFetcher)
	if !ok {
		return
	}
	edition := s.cfg.Edition()
	for _, filename := range domFetcher.Index().Filenames() {
		chapter, heading, ok := naming.ParseCoordinateFilename(edition, filename)
		if !ok {
			continue
		}
		doc := naming.NewCoordinateDocument(chapter, heading)
		s.frontier.Submit(frontier.NewAdmissionCandidate(
			doc,
			filename,
			frontier.SourceDiscovery,
		))
	}
}

// resumeCursor reconstructs the resume position from the output
// directory: the lexicographically greatest (chapter, heading) pair
// among existing coordinate filenames. Grid pairs at or before the
// cursor are skipped without any network call.
func (s *Scheduler) resumeCursor() (chapter int, heading int) {
	entries, err := os.ReadDir(s.editionDir())
	if err != nil {
		return 0, 0
	}

	edition := s.cfg.Edition()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ch, hd, ok := naming.ParseCoordinateFilename(edition, entry.Name())
		if !ok {
			continue
		}
		hdNum, convErr := strconv.Atoi(hd)
		if convErr != nil {
			continue
		}
		if ch > chapter || (ch == chapter && hdNum > heading) {
			chapter = ch
			heading = hdNum
		}
	}
	return chapter, heading
}

// processAdmitted walks the admitted sequence one document at a time
// with politeness pacing between every network-issuing step.
func (s *Scheduler) processAdmitted(ctx context.Context) error {
	for {
		candidate, ok := s.frontier.Dequeue()
		if !ok {
			return nil
		}

		if candidate.Source() == frontier.SourceMandatory {
			s.report.finalState = StateEnumeratingMandatory
		} else {
			s.report.finalState = StateEnumeratingGrid
		}

		if err := s.processOne(ctx, candidate); err != nil {
			return err
		}

		if ctx.Err() != nil {
			return &SchedulerError{
				Message: ctx.Err().Error(),
				Cause:   ErrCauseRunCancelled,
			}
		}
	}
}

func (s *Scheduler) processOne(ctx context.Context, candidate frontier.AdmissionCandidate) error {
	doc := candidate.Document()
	edition := s.cfg.Edition()
	remote := naming.Resolve(s.cfg.BaseURL(), edition, doc)
	localPath := filepath.Join(s.editionDir(), candidate.Filename())

	if s.cfg.DryRun() {
		// Simulate only: no network, no writes.
		if fileutil.Exists(localPath) {
			s.report.skipped++
		} else {
			s.report.downloaded++
		}
		return nil
	}

	fetchUrl := remote.URL()

	switch s.cfg.ExistingPolicy() {
	case config.ExistingSkip:
		if fileutil.Exists(localPath) {
			s.report.skipped++
			return nil
		}
	case config.ExistingCheck:
		if fileutil.Exists(localPath) {
			// The probe is still a request to the origin; pace it at a
			// fraction of the standard delay.
			if err := s.pause(ctx, s.pacer.ResolveProbeDelay(s.originHost())); err != nil {
				return err
			}
			needed, probed := s.detector.NeedsRefetch(ctx, fetchUrl, s.referer, localPath)
			if probed {
				s.pacer.MarkLastRequestAsNow(s.originHost())
			}
			if !needed {
				s.report.skipped++
				return nil
			}
		}
	case config.ExistingForce:
		// always refetch
	}

	if err := s.pause(ctx, s.pacer.ResolveDelay(s.originHost())); err != nil {
		return err
	}

	result, fetchErr := s.fetchStrategy.Fetch(ctx, remote, s.referer, localPath, s.retryParam())
	s.pacer.MarkLastRequestAsNow(s.originHost())

	if fetchErr != nil {
		s.report.failed++
		s.report.failures = append(s.report.failures, NewItemFailure(
			candidate.Filename(),
			fetchUrl.String(),
			fetchErr.Error(),
		))
		if fetchErr.Severity() == failure.SeverityFatal {
			// Blocked origin or unrecoverable storage: continuing would
			// only make things worse.
			return fetchErr
		}
		return nil
	}

	if result.Outcome() == fetcher.OutcomeAbsent {
		if remote.IsMandatory() {
			s.report.failed++
			s.report.failures = append(s.report.failures, NewItemFailure(
				candidate.Filename(),
				fetchUrl.String(),
				ErrCauseMandatoryAbsent,
			))
			schedErr := &SchedulerError{
				Message: fmt.Sprintf("%s reported absent by origin", candidate.Filename()),
				Cause:   ErrCauseMandatoryAbsent,
			}
			s.metadataSink.RecordError(
				time.Now(),
				"scheduler",
				"Scheduler.processOne",
				metadata.CauseDataIntegrity,
				schedErr.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrFilename, candidate.Filename()),
					metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
				},
			)
			return schedErr
		}
		// Absence is the expected non-match for a speculative probe.
		s.report.skipped++
		return nil
	}

	s.report.downloaded++
	return nil
}

// pause sleeps for the given delay, honoring cancellation. All
// suspension points of the run go through here or through the HTTP
// client's context handling.
func (s *Scheduler) pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &SchedulerError{
			Message: ctx.Err().Error(),
			Cause:   ErrCauseRunCancelled,
		}
	case <-timer.C:
		return nil
	}
}
