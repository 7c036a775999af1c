package questionnaire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrtlewealth/blueprint/internal/model"
)

func completeAnswers() model.AnswerSet {
	return model.AnswerSet{
		"Q1":  model.Single("C"),
		"Q2":  model.Multi("STG2", "STG3"),
		"Q3":  model.Single("C"),
		"Q4":  model.Single("B"),
		"Q5":  model.Single("A"),
		"Q6":  model.Single("A"),
		"Q7":  model.Single("A"),
		"Q8":  model.Multi("T2", "T3"),
		"Q9":  model.Single("B"),
		"Q10": model.Single("B"),
		"Q11": model.Single("B"),
		"Q12": model.Single("B"),
		"Q13": model.Single("B"),
		"Q14": model.Single("B"),
	}
}

func validClient() model.Client {
	return model.Client{
		FullName:        "Ada Obi",
		Email:           "ada@example.com",
		Phone:           "+234 803 000 0000",
		Gender:          "Female",
		DateOfBirth:     "1990-04-12",
		Occupation:      "Engineer",
		Address:         "12 Marina, Lagos",
		MaritalStatus:   "Single",
		DependantsCount: 0,
	}
}

func TestValidate_Complete(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(completeAnswers()))

	withOptional := completeAnswers()
	withOptional["Q15"] = model.Multi("SRC1", "SRC7")
	withOptional["Q16"] = model.Single("Please call me after 5pm.")
	withOptional[AdvisorQuestion] = model.Single("What is the minimum investment?")
	require.NoError(t, Validate(withOptional))
}

func TestValidate_MissingListedInOrder(t *testing.T) {
	t.Parallel()

	answers := completeAnswers()
	delete(answers, "Q3")
	delete(answers, "Q12")
	delete(answers, "Q1")

	err := Validate(answers)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Validation error: Missing answers for Q1, Q3, Q12", err.Error())
}

func TestValidate_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		q       string
		answer  model.Answer
		wantErr string
	}{
		{"single given as list", "Q1", model.Multi("A"), "Invalid answer format for Q1. Must be one of A, B, C, D, E, F"},
		{"code outside set", "Q3", model.Single("E"), "Invalid answer format for Q3. Must be one of A, B, C, D"},
		{"multi given as string", "Q2", model.Single("STG1"), "Q2 must be an array with at least one selection"},
		{"empty multi", "Q8", model.Multi(), "Q8 must be an array with at least one selection"},
		{"unknown goal", "Q8", model.Multi("T1", "T9"), `Invalid selection "T9" for Q8`},
		{"empty optional multi", "Q15", model.Multi(), "Q15 must be an array with at least one selection"},
		{"text given as list", "Q16", model.Multi("hi"), "Q16 must be text"},
		{"text too long", "Q16", model.Single(strings.Repeat("x", MaxTextLength+1)), "Q16 must be at most"},
		{"advisor question as list", AdvisorQuestion, model.Multi("a"), "advisorQuestion must be text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			answers := completeAnswers()
			answers[tt.q] = tt.answer
			err := Validate(answers)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateClient(t *testing.T) {
	t.Parallel()
	require.NoError(t, ValidateClient(validClient()))

	tests := []struct {
		name    string
		mutate  func(c *model.Client)
		wantErr string
	}{
		{"blank name", func(c *model.Client) { c.FullName = "  " }, "fullName is required"},
		{"bad email", func(c *model.Client) { c.Email = "ada@" }, "email must be a valid email address"},
		{"display name email", func(c *model.Client) { c.Email = "Ada Lovelace <ada@example.com>" }, "email must be a valid email address"},
		{"bracketed email", func(c *model.Client) { c.Email = "<ada@example.com>" }, "email must be a valid email address"},
		{"dotless domain", func(c *model.Client) { c.Email = "ada@localhost" }, "email must be a valid email address"},
		{"bad phone", func(c *model.Client) { c.Phone = "call me" }, "phone must be a valid phone number"},
		{"bad date", func(c *model.Client) { c.DateOfBirth = "12/04/1990" }, "YYYY-MM-DD"},
		{"future date", func(c *model.Client) { c.DateOfBirth = "2999-01-01" }, "must be in the past"},
		{"negative dependants", func(c *model.Client) { c.DependantsCount = -1 }, "dependantsCount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := validClient()
			tt.mutate(&c)
			err := ValidateClient(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Steady income, Legacy building", Label("Q8", "T2", "T5"))
	assert.Equal(t, "Very long-term (5+ years)", Label("Q3", "D"))
	assert.Equal(t, "Z", Label("Q3", "Z"))
	assert.Equal(t, "a, b", Label("Q99", "a", "b"))
	assert.Equal(t, "", Label("Q8"))
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	qs := Questions()
	require.Len(t, qs, 16)
	required := 0
	for _, q := range qs {
		if q.Required {
			required++
		}
	}
	assert.Equal(t, 14, required)

	q, ok := Lookup("Q4")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, q.Codes())

	_, ok = Lookup("Q17")
	assert.False(t, ok)
}
