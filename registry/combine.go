package registry

import (
	"errors"
	"io"
)

// Combine merges several transports into one. Its tracking count is the
// sum of the members' counts; registrations are concatenated in member
// order. Open and Close fan out to the members that support them.
func Combine(ts ...Transport) Transport {
	return combined(ts)
}

type combined []Transport

func (c combined) TrackingCount() int64 {
	var n int64
	for _, t := range c {
		n += t.TrackingCount()
	}
	return n
}

func (c combined) Registrations() []Registration {
	var out []Registration
	for _, t := range c {
		out = append(out, t.Registrations()...)
	}
	return out
}

func (c combined) Open() error {
	for _, t := range c {
		if o, ok := t.(opener); ok {
			if err := o.Open(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c combined) Close() error {
	var errs []error
	for _, t := range c {
		if cl, ok := t.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	return errors.Join(errs...)
}
