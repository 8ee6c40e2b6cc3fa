package rygonet

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Scalar is a stat value that is either a plain integer or a literal token
// with a rules-defined meaning: the sentinels "xx" (cannot target), "++"
// (automatic) and "*" (variable), modifier forms such as "0+" or "1-", and
// dice notation such as "[D3]". It marshals to a JSON number or string.
type Scalar struct {
	Num   int
	Token string
}

// IntScalar returns a numeric Scalar.
func IntScalar(n int) Scalar { return Scalar{Num: n} }

// TokenScalar returns a literal-token Scalar.
func TokenScalar(t string) Scalar { return Scalar{Token: t} }

// IsToken reports whether the value is a literal token rather than a number.
func (s Scalar) IsToken() bool { return s.Token != "" }

func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.Token != "" {
		return json.Marshal(s.Token)
	}
	return json.Marshal(s.Num)
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Scalar{Num: n}
		return nil
	}
	var t string
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	*s = Scalar{Token: t}
	return nil
}

// Points is a unit's cost: a plain integer, or a split "A/B" string for
// variable-cost units. Split costs are never flattened to a number.
type Points struct {
	Value int
	Split string
}

func (p Points) MarshalJSON() ([]byte, error) {
	if p.Split != "" {
		return json.Marshal(p.Split)
	}
	return json.Marshal(p.Value)
}

func (p *Points) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Points{Value: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Points{Split: s}
	return nil
}

// parsePoints converts a points token, keeping split costs like "0/20" as
// strings and converting single values to ints.
func parsePoints(s string) Points {
	if strings.Contains(s, "/") {
		return Points{Split: s}
	}
	n, _ := strconv.Atoi(s)
	return Points{Value: n}
}

// AccuracyPair is an accuracy value that differs between a stationary and a
// moving firer.
type AccuracyPair struct {
	Stationary Scalar `json:"stationary"`
	Moving     Scalar `json:"moving"`
}

// Accuracy is a weapon's to-hit value: a threshold (or sentinel token), or a
// stationary/moving pair.
type Accuracy struct {
	Value Scalar
	Pair  *AccuracyPair
}

func (a Accuracy) MarshalJSON() ([]byte, error) {
	if a.Pair != nil {
		return json.Marshal(a.Pair)
	}
	return json.Marshal(a.Value)
}

func (a *Accuracy) UnmarshalJSON(data []byte) error {
	var pair AccuracyPair
	if err := json.Unmarshal(data, &pair); err == nil {
		*a = Accuracy{Pair: &pair}
		return nil
	}
	var v Scalar
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Accuracy{Value: v}
	return nil
}

// parseAccuracyPart parses one element of an accuracy token: a sentinel, or
// a digit threshold with an optional trailing "+".
func parseAccuracyPart(part string) (Scalar, bool) {
	part = strings.TrimSpace(part)
	switch strings.ToLower(part) {
	case "xx", "x":
		return TokenScalar("xx"), true
	case "++":
		return TokenScalar("++"), true
	case "*":
		return TokenScalar("*"), true
	}
	part = strings.TrimRight(part, "+")
	n, err := strconv.Atoi(part)
	if err != nil {
		return Scalar{}, false
	}
	return IntScalar(n), true
}

// parseAccuracy parses accuracy tokens such as "4+", "3+/4+", "xx", "++" and
// "++/xx". The second return value is false when the token has no known
// numeric or sentinel form; callers drop the weapon in that case.
func parseAccuracy(acc string) (Accuracy, bool) {
	acc = strings.TrimSpace(acc)
	if acc == "" {
		return Accuracy{}, false
	}

	if strings.Contains(acc, "/") {
		parts := strings.Split(acc, "/")
		parsed := make([]Scalar, 0, len(parts))
		for _, part := range parts {
			v, ok := parseAccuracyPart(part)
			if !ok {
				return Accuracy{}, false
			}
			parsed = append(parsed, v)
		}
		switch len(parsed) {
		case 2:
			return Accuracy{Pair: &AccuracyPair{Stationary: parsed[0], Moving: parsed[1]}}, true
		case 1:
			return Accuracy{Value: parsed[0]}, true
		default:
			return Accuracy{}, false
		}
	}

	v, ok := parseAccuracyPart(acc)
	if !ok {
		return Accuracy{}, false
	}
	return Accuracy{Value: v}, true
}

// StrengthPair is a strength value that differs between full range and half
// range.
type StrengthPair struct {
	Normal    Scalar `json:"normal"`
	HalfRange Scalar `json:"halfRange"`
}

// Strength is a weapon's strength: a number, a modifier token like "0+",
// dice notation like "[D3]", or a normal/half-range pair.
type Strength struct {
	Value Scalar
	Pair  *StrengthPair
}

func (s Strength) MarshalJSON() ([]byte, error) {
	if s.Pair != nil {
		return json.Marshal(s.Pair)
	}
	return json.Marshal(s.Value)
}

func (s *Strength) UnmarshalJSON(data []byte) error {
	var pair StrengthPair
	if err := json.Unmarshal(data, &pair); err == nil {
		*s = Strength{Pair: &pair}
		return nil
	}
	var v Scalar
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Strength{Value: v}
	return nil
}

var diceNotationRe = regexp.MustCompile(`^\[D\d+\]$`)

// parseStrength parses strength tokens such as "14", "1/1+", "0+" and
// "[D3]". It returns nil for an empty token, and ok=false when the token is
// unparseable.
func parseStrength(sv string) (*Strength, bool) {
	sv = strings.TrimSpace(sv)
	if sv == "" {
		return nil, true
	}

	if diceNotationRe.MatchString(sv) {
		return &Strength{Value: TokenScalar(sv)}, true
	}

	if strings.Contains(sv, "/") {
		parts := strings.Split(sv, "/")
		parsed := make([]Scalar, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimRight(strings.TrimSpace(part), "+")
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, false
			}
			parsed = append(parsed, IntScalar(n))
		}
		switch len(parsed) {
		case 2:
			return &Strength{Pair: &StrengthPair{Normal: parsed[0], HalfRange: parsed[1]}}, true
		case 1:
			return &Strength{Value: parsed[0]}, true
		default:
			return nil, false
		}
	}

	// Modifier forms like "0+" are kept verbatim.
	if strings.HasSuffix(sv, "+") {
		return &Strength{Value: TokenScalar(sv)}, true
	}
	if n, err := strconv.Atoi(sv); err == nil {
		return &Strength{Value: IntScalar(n)}, true
	}
	return nil, false
}

// ToughnessSides is directional toughness for ground units and helicopters.
type ToughnessSides struct {
	Front Scalar `json:"front"`
	Side  Scalar `json:"side"`
	Rear  Scalar `json:"rear"`
}

// Toughness is either a single value (aircraft) or a front/side/rear triple.
type Toughness struct {
	Value Scalar
	Sides *ToughnessSides
}

func (t Toughness) MarshalJSON() ([]byte, error) {
	if t.Sides != nil {
		return json.Marshal(t.Sides)
	}
	return json.Marshal(t.Value)
}

func (t *Toughness) UnmarshalJSON(data []byte) error {
	var sides ToughnessSides
	if err := json.Unmarshal(data, &sides); err == nil {
		*t = Toughness{Sides: &sides}
		return nil
	}
	var v Scalar
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Toughness{Value: v}
	return nil
}

// parseToughnessValue parses one toughness component: an int, or a modifier
// token like "1-" or "2+" kept verbatim.
func parseToughnessValue(t string) Scalar {
	t = strings.TrimSpace(t)
	if strings.HasSuffix(t, "-") || strings.HasSuffix(t, "+") {
		return TokenScalar(t)
	}
	if n, err := strconv.Atoi(t); err == nil {
		return IntScalar(n)
	}
	return TokenScalar(t)
}
