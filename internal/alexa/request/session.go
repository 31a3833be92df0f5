// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package request

// Session identifies the skill, user and platform API access for a turn.
type Session struct {
	ID             string
	New            bool
	ApplicationID  string
	UserID         string
	APIEndpoint    string
	APIAccessToken string
}

// newSession reads identity from the session object and falls back to
// context.System for events delivered outside a session.
func newSession(env *envelope) Session {
	var s Session

	if env.Session != nil {
		s.ID = env.Session.SessionID
		s.New = env.Session.New
		if env.Session.Application != nil {
			s.ApplicationID = env.Session.Application.ApplicationID
		}
		if env.Session.User != nil {
			s.UserID = env.Session.User.UserID
		}
	}

	sys := env.system()
	if sys == nil {
		return s
	}
	if sys.Application != nil {
		if s.ApplicationID == "" {
			s.ApplicationID = sys.Application.ApplicationID
		}
		if s.UserID == "" {
			s.UserID = sys.Application.UserID
		}
	}
	if s.UserID == "" && sys.User != nil {
		s.UserID = sys.User.UserID
	}
	s.APIEndpoint = sys.APIEndpoint
	s.APIAccessToken = sys.APIAccessToken
	return s
}

func (e *envelope) system() *systemJSON {
	if e.Context == nil {
		return nil
	}
	return e.Context.System
}
