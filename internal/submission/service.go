// Package submission orchestrates a questionnaire from intake to delivery:
// validate, score, narrate, persist, then render and email the blueprint.
package submission

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/myrtlewealth/blueprint/internal/document"
	"github.com/myrtlewealth/blueprint/internal/metrics"
	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/narrative"
	"github.com/myrtlewealth/blueprint/internal/notify"
	"github.com/myrtlewealth/blueprint/internal/questionnaire"
	"github.com/myrtlewealth/blueprint/internal/scorer"
	"github.com/myrtlewealth/blueprint/internal/store"
)

const deliveryTimeout = 2 * time.Minute

// Request is an incoming questionnaire.
type Request struct {
	Client          model.Client
	Answers         model.AnswerSet
	AdvisorQuestion string
}

// Outcome is what Submit hands back to the caller.
type Outcome struct {
	Submission *model.Submission
	Result     scorer.Result
	Narrative  narrative.Narrative
}

// Options configures a Service.
type Options struct {
	Store    store.Store
	Scorer   *scorer.Scorer
	Mailer   notify.Mailer
	Renderer *document.Renderer
	Metrics  *metrics.Metrics
	// AttachPDF adds the rendered blueprint to the onboarding email.
	AttachPDF bool
}

// Service is safe for concurrent use.
type Service struct {
	store     store.Store
	scorer    *scorer.Scorer
	mailer    notify.Mailer
	renderer  *document.Renderer
	metrics   *metrics.Metrics
	attachPDF bool

	deliveries sync.WaitGroup
}

// New returns a Service. Store and Scorer are required; a nil Mailer
// disables delivery.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, eris.New("submission: store is required")
	}
	if opts.Scorer == nil {
		return nil, eris.New("submission: scorer is required")
	}
	if opts.Renderer == nil {
		opts.Renderer = document.NewRenderer()
	}
	return &Service{
		store:     opts.Store,
		scorer:    opts.Scorer,
		mailer:    opts.Mailer,
		renderer:  opts.Renderer,
		metrics:   opts.Metrics,
		attachPDF: opts.AttachPDF,
	}, nil
}

// Analyze validates answers and classifies them without persisting
// anything.
func (s *Service) Analyze(answers model.AnswerSet) (scorer.Result, narrative.Narrative, error) {
	if err := questionnaire.Validate(answers); err != nil {
		return scorer.Result{}, narrative.Narrative{}, err
	}
	res, n := s.analyze(answers)
	return res, n, nil
}

func (s *Service) analyze(answers model.AnswerSet) (scorer.Result, narrative.Narrative) {
	start := time.Now()
	res := s.scorer.Score(answers)
	n := narrative.Generate(res, narrative.BuildContext(answers, s.scorer))
	s.metrics.ObserveAnalysis(time.Since(start))
	return res, n
}

// Submit validates, scores and stores req, then queues delivery of the
// blueprint. Validation failures are returned as
// *questionnaire.ValidationError.
func (s *Service) Submit(ctx context.Context, req Request) (*Outcome, error) {
	answers := req.Answers.Clone()
	if answers == nil {
		answers = model.AnswerSet{}
	}
	if q := strings.TrimSpace(req.AdvisorQuestion); q != "" {
		answers[questionnaire.AdvisorQuestion] = model.Single(q)
	}

	if err := validateRequest(req.Client, answers); err != nil {
		s.metrics.ObserveRejected()
		return nil, err
	}

	res, n := s.analyze(answers)

	sub := &model.Submission{
		Client:   req.Client,
		Answers:  answers,
		Analysis: res.Analysis(n.Text()),
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return nil, eris.Wrap(err, "submission: save")
	}
	s.metrics.ObserveSubmission(sub.Analysis.Persona, sub.Analysis.RiskProfile)

	zap.L().Info("submission stored",
		zap.String("submission_id", sub.ID),
		zap.String("persona", sub.Analysis.Persona),
		zap.String("risk_profile", sub.Analysis.RiskProfile),
		zap.String("net_worth_band", sub.Analysis.NetWorthBand),
		zap.String("rule_set", sub.Analysis.RuleSet),
	)

	s.deliver(sub, n)
	return &Outcome{Submission: sub, Result: res, Narrative: n}, nil
}

// validateRequest merges client and answer problems into one error.
func validateRequest(c model.Client, answers model.AnswerSet) error {
	var problems []string
	for _, err := range []error{questionnaire.ValidateClient(c), questionnaire.Validate(answers)} {
		var verr *questionnaire.ValidationError
		if errors.As(err, &verr) {
			problems = append(problems, verr.Problems...)
		}
	}
	if len(problems) > 0 {
		return &questionnaire.ValidationError{Problems: problems}
	}
	return nil
}

// deliver renders and emails the blueprint in the background. Failures are
// logged and counted; they never affect the stored submission.
func (s *Service) deliver(sub *model.Submission, n narrative.Narrative) {
	if s.mailer == nil {
		s.metrics.ObserveDelivery("email", metrics.StatusSkipped)
		return
	}
	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		log := zap.L().With(zap.String("submission_id", sub.ID), zap.String("provider", s.mailer.Name()))
		if err := s.sendBlueprint(ctx, sub, n); err != nil {
			s.metrics.ObserveDelivery("email", metrics.StatusFailed)
			log.Error("blueprint delivery failed", zap.Error(err))
			return
		}
		s.metrics.ObserveDelivery("email", metrics.StatusSent)
		log.Info("blueprint delivered")
	}()
}

func (s *Service) sendBlueprint(ctx context.Context, sub *model.Submission, n narrative.Narrative) error {
	msg, err := notify.ComposeOnboarding(sub, n)
	if err != nil {
		return err
	}
	if s.attachPDF {
		pdf, err := s.renderer.Render(sub)
		if err != nil {
			return err
		}
		msg.Attachments = append(msg.Attachments, notify.Attachment{
			Filename:    document.Filename(sub.Client.FullName, sub.CreatedAt, sub.ID),
			ContentType: "application/pdf",
			Content:     pdf,
		})
	}
	return s.mailer.Send(ctx, msg)
}

// Wait blocks until queued deliveries finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.deliveries.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "submission: waiting for deliveries")
	}
}

// Get returns a stored submission. Missing ids wrap store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*model.Submission, error) {
	return s.store.GetSubmission(ctx, id)
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is a page of submission summaries.
type Page struct {
	Items      []model.SubmissionSummary `json:"questionnaires"`
	Pagination Pagination                `json:"pagination"`
}

// List returns submissions newest first. Non-positive page and limit fall
// back to 1 and 20.
func (s *Service) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	filter := store.SubmissionFilter{Limit: limit, Offset: (page - 1) * limit}

	var items []model.SubmissionSummary
	var total int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.ListSubmissions(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountSubmissions(gctx, store.SubmissionFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "submission: list")
	}
	if items == nil {
		items = []model.SubmissionSummary{}
	}

	return &Page{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// Stats summarises all submissions for the admin dashboard.
type Stats struct {
	TotalSubmissions        int             `json:"totalSubmissions"`
	TotalNetWorth           decimal.Decimal `json:"totalNetWorth"`
	AverageNetWorth         decimal.Decimal `json:"averageNetWorth"`
	PersonaDistribution     map[string]int  `json:"personaDistribution"`
	RiskProfileDistribution map[string]int  `json:"riskProfileDistribution"`
}

// Stats runs the dashboard aggregates concurrently.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalSubmissions, err = s.store.CountSubmissions(gctx, store.SubmissionFilter{})
		return err
	})
	g.Go(func() (err error) {
		st.TotalNetWorth, err = s.store.SumNetWorth(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.PersonaDistribution, err = s.store.CountByPersona(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.RiskProfileDistribution, err = s.store.CountByRiskProfile(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "submission: stats")
	}

	if st.TotalSubmissions > 0 {
		st.AverageNetWorth = st.TotalNetWorth.DivRound(decimal.NewFromInt(int64(st.TotalSubmissions)), 2)
	}
	return &st, nil
}

// RenderPDF renders the blueprint for a stored submission and returns it
// with its download filename.
func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, string, error) {
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.renderer.Render(sub)
	if err != nil {
		return nil, "", err
	}
	return pdf, document.Filename(sub.Client.FullName, time.Now(), sub.ID), nil
}
