package types

import (
	"time"
)

type TimeDuration time.Duration

func (t *TimeDuration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*t = TimeDuration(d)
	return nil
}

func (t *TimeDuration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var duration string
	err := unmarshal(&duration)
	if err != nil {
		return err
	}
	return t.UnmarshalText([]byte(duration))
}

func (t TimeDuration) MarshalYAML() (interface{}, error) {
	return time.Duration(t).String(), nil
}

func (t TimeDuration) String() string {
	return time.Duration(t).String()
}
