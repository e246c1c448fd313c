package mapping

import "github.com/clarita-9850/dmxload/converters/dmx"

// attr is a legacy attribute key read by a generator. Missing, null and
// empty values are treated alike: in returns "", or returns the fallback.
type attr string

func (a attr) in(r dmx.Row) string {
	v, _ := r.Get(string(a))
	return v
}

func (a attr) or(r dmx.Row, fallback string) string {
	if v := a.in(r); v != "" {
		return v
	}
	return fallback
}
