package policy

// Evaluate narrows a request down to the capabilities the monitoring
// configuration allows. It never widens: a voice-only request stays
// voice-only even for an unrestricted user.
//
// The result feeds both the stored call type and the media token's track
// sources; callers must derive both from the same value so a participant can
// never infer a richer grant than the stored call type implies.
func Evaluate(req Request, s *Settings) Capabilities {
	caps := Capabilities{
		Audio:       true,
		Video:       req.Video,
		ScreenShare: req.ScreenShare,
	}
	if s == nil {
		return caps
	}

	if s.Tier == TierStrict || !s.AllowVideo {
		caps.Video = false
	}
	if s.Tier == TierStrict || !s.AllowScreenShare {
		caps.ScreenShare = false
	}
	return caps
}
