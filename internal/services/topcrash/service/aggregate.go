package service

import "topcrash/internal/services/topcrash/domain"

// mergeCriterion folds one criterion's completed facet into the shared map.
//
// Primary pass, entries[0:TCLimit] in order: the first row under minCrashes
// ends the whole pass, not just that row, because rows arrive sorted
// descending by count. Rescue pass, entries[TCLimit:TCStartupLimit]: startup
// rows only, taken regardless of count and regardless of whether the primary
// pass stopped early. The rescue pass never demotes a record
func mergeCriterion(out domain.ResultMap, c domain.Criterion, entries []domain.SignatureFacetEntry, minCrashes int) {
	limit := min(c.TCLimit, len(entries))
	for _, e := range entries[:limit] {
		if e.Count < minCrashes {
			break
		}
		upsert(out, e.Name, e.IsStartup())
	}

	if c.TCStartupLimit == 0 {
		return
	}
	hi := min(c.TCStartupLimit, len(entries))
	for i := c.TCLimit; i < hi; i++ {
		if !entries[i].IsStartup() {
			continue
		}
		upsert(out, entries[i].Name, true)
	}
}

// upsert ORs the startup flag into the record; true is sticky for the run
func upsert(out domain.ResultMap, name string, isStartup bool) {
	rec, ok := out[name]
	if !ok {
		out[name] = domain.SignatureRecord{IsStartup: isStartup}
		return
	}
	rec.IsStartup = rec.IsStartup || isStartup
	out[name] = rec
}
