package store

// migrate upgrades documents written before trackers carried an upstream
// issue id. Those trackers were keyed by the issue key alone, so the key
// doubles as the id.
func migrate(doc *document) {
	for i := range doc.Trackers {
		r := &doc.Trackers[i]

		if r.record.ID == "" {
			r.record.ID = r.key
		}
	}
}
