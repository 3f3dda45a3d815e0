package mock

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Weekday is 1 (Monday) through 7 (Sunday). It is written as a number and
// read from either a number or an English day name.
type Weekday int

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 7 {
			return 0, fmt.Errorf("weekday %d out of range", n)
		}
		return Weekday(n), nil
	}
	for i, name := range weekdayNames {
		if strings.EqualFold(name, s) {
			return Weekday(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (d Weekday) String() string {
	if d < 1 || d > 7 {
		return strconv.Itoa(int(d))
	}
	return weekdayNames[d-1]
}

func (d *Weekday) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var parsed Weekday
	var err error
	switch v := raw.(type) {
	case float64:
		parsed, err = ParseWeekday(strconv.Itoa(int(v)))
	case string:
		parsed, err = ParseWeekday(v)
	default:
		err = fmt.Errorf("weekday must be a number or a name, got %s", string(data))
	}
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Weekday) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseWeekday(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
