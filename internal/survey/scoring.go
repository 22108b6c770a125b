package survey

import (
	apperrors "marketruns/internal/errors"
)

// likert7 maps the 7-point agreement answers to their numeric codes.
var likert7 = map[string]int{
	"Strongly Disagree":          1,
	"Disagree Moderately":        2,
	"Disagree a little":          3,
	"Neither agree nor disagree": 4,
	"Agree a little":             5,
	"Agree Moderately":           6,
	"Strongly Agree":             7,
}

// likert4 maps the 4-point intensity answers used by the anxiety items.
var likert4 = map[string]int{
	"Not at all": 1,
	"Somewhat":   2,
	"Moderately": 3,
	"Very much":  4,
}

// Response holds one participant's raw answers keyed by question name
// ("q1" through "q26").
type Response map[string]string

// Scores are the derived trait values of one participant.
type Scores struct {
	Extraversion      float64
	Agreeableness     float64
	Conscientiousness float64
	Neuroticism       float64
	Openness          float64
	Impulsivity       float64
	StateAnxiety      float64
}

// bfiItems pairs each BFI-10 trait with its forward and reverse-coded item.
var bfiItems = []struct {
	trait   string
	forward string
	reverse string
}{
	{"extraversion", "q7", "q12"},
	{"agreeableness", "q13", "q8"},
	{"conscientiousness", "q9", "q14"},
	{"neuroticism", "q10", "q15"},
	{"openness", "q11", "q16"},
}

var (
	impulsivityForward = []string{"q18", "q19", "q23", "q24"}
	impulsivityReverse = []string{"q17", "q20", "q21", "q22"}

	// q1-q3 state positive mood and are reverse coded into anxiety.
	anxietyReverse = []string{"q1", "q2", "q3"}
	anxietyForward = []string{"q4", "q5", "q6"}
)

// Score computes all trait values from a complete response. Every scored
// item must hold a recognized Likert answer.
func Score(resp Response) (Scores, error) {
	var s Scores
	bfi := map[string]*float64{
		"extraversion":      &s.Extraversion,
		"agreeableness":     &s.Agreeableness,
		"conscientiousness": &s.Conscientiousness,
		"neuroticism":       &s.Neuroticism,
		"openness":          &s.Openness,
	}

	for _, item := range bfiItems {
		v, err := meanOfItems(resp, likert7, []string{item.forward}, []string{item.reverse})
		if err != nil {
			return Scores{}, err
		}
		*bfi[item.trait] = v
	}

	impulsivity, err := meanOfItems(resp, likert7, impulsivityForward, impulsivityReverse)
	if err != nil {
		return Scores{}, err
	}
	s.Impulsivity = impulsivity

	anxiety, err := meanOfItems(resp, likert4, anxietyForward, anxietyReverse)
	if err != nil {
		return Scores{}, err
	}
	s.StateAnxiety = anxiety

	return s, nil
}

// meanOfItems averages the encoded forward items and the reverse-coded
// reverse items on the given scale.
func meanOfItems(resp Response, scale map[string]int, forward, reverse []string) (float64, error) {
	top := scaleTop(scale)
	sum := 0
	for _, q := range forward {
		v, err := encode(resp, scale, q)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	for _, q := range reverse {
		v, err := encode(resp, scale, q)
		if err != nil {
			return 0, err
		}
		sum += top + 1 - v
	}
	return float64(sum) / float64(len(forward)+len(reverse)), nil
}

func encode(resp Response, scale map[string]int, question string) (int, error) {
	raw := resp[question]
	v, ok := scale[raw]
	if !ok {
		return 0, apperrors.NewIntegrityError(
			"question %s holds unrecognized answer %q", question, raw)
	}
	return v, nil
}

func scaleTop(scale map[string]int) int {
	top := 0
	for _, v := range scale {
		if v > top {
			top = v
		}
	}
	return top
}
