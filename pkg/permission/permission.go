// Package permission abstracts the platform authorization authority for
// camera, microphone and photo-library access.
package permission

// Status is an authorization state. The platform's "restricted" state is
// collapsed into Denied.
type Status int

const (
	NotDetermined Status = iota
	Denied
	Authorized
)

func (s Status) String() string {
	switch s {
	case Authorized:
		return "authorized"
	case Denied:
		return "denied"
	default:
		return "not determined"
	}
}

// Media names an access-controlled capability.
type Media string

const (
	Camera       Media = "camera"
	Microphone   Media = "microphone"
	PhotoLibrary Media = "photo-library"
)

// Authority queries and requests authorization. Request is asynchronous and
// single-shot: done is invoked exactly once per call.
type Authority interface {
	Status(Media) Status
	Request(media Media, done func(granted bool))
}

// Static is an Authority with fixed answers, useful for tests and for
// platforms without an authorization concept.
type Static map[Media]Status

func (s Static) Status(m Media) Status {
	if st, ok := s[m]; ok {
		return st
	}
	return Authorized
}

func (s Static) Request(m Media, done func(bool)) {
	done(s.Status(m) == Authorized)
}
