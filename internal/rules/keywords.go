package rules

// KeywordSets holds the curated keyword lists the engine matches against.
// Matching is case-insensitive substring search; the lists are read-only
// shared configuration once the engine is constructed.
type KeywordSets struct {
	Legal  []string
	Threat []string
	Spam   []string
}

// DefaultKeywords returns the stock keyword sets. Deployments extend them
// through the rules section of the config file.
func DefaultKeywords() KeywordSets {
	return KeywordSets{
		Legal: []string{
			"lawsuit", "lawyer", "attorney", "legal action", "sue", "court",
			"litigation", "subpoena", "defamation", "breach of contract",
		},
		Threat: []string{
			"cancel", "canceling", "cancelling", "unsubscribe", "refund",
			"switching to", "competitor", "leaving", "disappointed",
		},
		Spam: []string{
			"click here", "buy now", "limited offer", "act fast", "congratulations",
		},
	}
}

// Merge returns a copy of k with the extra keywords appended. Duplicates are
// harmless; first match wins and synonyms are not ranked.
func (k KeywordSets) Merge(extra KeywordSets) KeywordSets {
	out := KeywordSets{
		Legal:  make([]string, 0, len(k.Legal)+len(extra.Legal)),
		Threat: make([]string, 0, len(k.Threat)+len(extra.Threat)),
		Spam:   make([]string, 0, len(k.Spam)+len(extra.Spam)),
	}
	out.Legal = append(append(out.Legal, k.Legal...), extra.Legal...)
	out.Threat = append(append(out.Threat, k.Threat...), extra.Threat...)
	out.Spam = append(append(out.Spam, k.Spam...), extra.Spam...)
	return out
}
