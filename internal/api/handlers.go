package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/myrtlewealth/blueprint/internal/auth"
	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/questionnaire"
	"github.com/myrtlewealth/blueprint/internal/store"
	"github.com/myrtlewealth/blueprint/internal/submission"
)

const maxBodyBytes = 1 << 20

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("dependantsCount must be a whole number")
	}
	*n = flexInt(v)
	return nil
}

type submitRequest struct {
	FullName        string          `json:"fullName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Gender          string          `json:"gender"`
	DateOfBirth     string          `json:"dateOfBirth"`
	Occupation      string          `json:"occupation"`
	Address         string          `json:"address"`
	MaritalStatus   string          `json:"maritalStatus"`
	DependantsCount flexInt         `json:"dependantsCount"`
	Answers         model.AnswerSet `json:"answers"`
	AdvisorQuestion string          `json:"advisorQuestion"`
}

func (req submitRequest) toRequest() submission.Request {
	return submission.Request{
		Client: model.Client{
			FullName:        strings.TrimSpace(req.FullName),
			Email:           strings.TrimSpace(req.Email),
			Phone:           strings.TrimSpace(req.Phone),
			Gender:          req.Gender,
			DateOfBirth:     req.DateOfBirth,
			Occupation:      req.Occupation,
			Address:         req.Address,
			MaritalStatus:   req.MaritalStatus,
			DependantsCount: int(req.DependantsCount),
		},
		Answers:         req.Answers,
		AdvisorQuestion: req.AdvisorQuestion,
	}
}

type submissionRef struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type analysisView struct {
	NetWorth     int64            `json:"netWorth"`
	NetWorthBand string           `json:"netWorthBand"`
	RiskScore    int              `json:"riskScore"`
	RiskProfile  string           `json:"riskProfile"`
	Persona      string           `json:"persona"`
	Portfolio    model.Allocation `json:"portfolio"`
	Narrative    string           `json:"narrative"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func (s *server) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	out, err := s.subs.Submit(r.Context(), req.toRequest())
	var verr *questionnaire.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(w, http.StatusBadRequest, verr.Error())
		return
	case err != nil:
		zap.L().Error("submit questionnaire", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Failed to submit questionnaire")
		return
	}

	sub, a := out.Submission, out.Submission.Analysis
	ok(w, http.StatusCreated, map[string]any{
		"submission": submissionRef{
			ID:        sub.ID,
			FullName:  sub.Client.FullName,
			Email:     sub.Client.Email,
			CreatedAt: sub.CreatedAt,
		},
		"analysis": analysisView{
			NetWorth:     a.NetWorth,
			NetWorthBand: a.NetWorthBand,
			RiskScore:    a.RiskScore,
			RiskProfile:  a.RiskProfile,
			Persona:      a.Persona,
			Portfolio:    a.Portfolio,
			Narrative:    a.Narrative,
		},
	})
}

// questionnaireView flattens a submission the way clients expect it.
type questionnaireView struct {
	ID string `json:"id"`
	model.Client
	Answers model.AnswerSet `json:"answers"`
	model.Analysis
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *server) getQuestionnaire(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(w, http.StatusNotFound, "Questionnaire not found")
		return
	}
	if err != nil {
		zap.L().Error("fetch questionnaire", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Failed to fetch questionnaire")
		return
	}
	ok(w, http.StatusOK, map[string]any{
		"questionnaire": questionnaireView{
			ID:        sub.ID,
			Client:    sub.Client,
			Answers:   sub.Answers,
			Analysis:  sub.Analysis,
			CreatedAt: sub.CreatedAt,
			UpdatedAt: sub.UpdatedAt,
		},
	})
}

func (s *server) downloadPDF(w http.ResponseWriter, r *http.Request) {
	pdf, filename, err := s.subs.RenderPDF(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(w, http.StatusNotFound, "Questionnaire not found")
		return
	}
	if err != nil {
		zap.L().Error("render pdf", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		zap.L().Debug("write pdf", zap.Error(err))
	}
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil || req.Username == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	sess, err := s.accounts.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		zap.L().Error("admin login", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	zap.L().Info("admin logged in", zap.String("username", sess.Admin.Username))
	ok(w, http.StatusOK, map[string]any{
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
		"admin": map[string]string{
			"id":       sess.Admin.ID,
			"username": sess.Admin.Username,
			"email":    sess.Admin.Email,
		},
	})
}

func (s *server) listQuestionnaires(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if c, found := AdminFromContext(r.Context()); found {
		zap.L().Debug("admin listing questionnaires", zap.String("username", c.Username), zap.Int("page", page))
	}

	res, err := s.subs.List(r.Context(), page, limit)
	if err != nil {
		zap.L().Error("list questionnaires", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Failed to fetch questionnaires")
		return
	}
	ok(w, http.StatusOK, res)
}

// jsonNumber renders a decimal as a bare JSON number.
func jsonNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func (s *server) dashboard(w http.ResponseWriter, r *http.Request) {
	st, err := s.subs.Stats(r.Context())
	if err != nil {
		zap.L().Error("dashboard stats", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Failed to fetch dashboard stats")
		return
	}
	ok(w, http.StatusOK, map[string]any{
		"stats": map[string]any{
			"totalSubmissions": st.TotalSubmissions,
			"totalNetWorth":    jsonNumber(st.TotalNetWorth),
			"averageNetWorth":  jsonNumber(st.AverageNetWorth),
		},
		"personaDistribution":     st.PersonaDistribution,
		"riskProfileDistribution": st.RiskProfileDistribution,
	})
}
