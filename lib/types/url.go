package types

import (
	"fmt"
	"net/url"
)

type URL url.URL

func ParseURL(s string) (URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return URL{}, err
	}
	return URL(*u), nil
}

func (u URL) IsZero() bool {
	return u.Scheme == "" && u.Host == ""
}

// URL returns a copy as *url.URL.
func (u URL) URL() *url.URL {
	u2 := url.URL(u)
	return &u2
}

func (u URL) String() string {
	return u.URL().String()
}

func (u *URL) UnmarshalText(text []byte) error {
	u2, err := ParseURL(string(text))
	if err != nil {
		return err
	}
	if u2.IsZero() {
		return fmt.Errorf("invalid url: %q", text)
	}
	*u = u2
	return nil
}

func (u *URL) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}
	return u.UnmarshalText([]byte(s))
}

func (u URL) MarshalYAML() (interface{}, error) {
	return u.String(), nil
}
